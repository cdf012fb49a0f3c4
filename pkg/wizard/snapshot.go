package wizard

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion is written into every encoded snapshot.
// Version 1 stored the tech stack as a single string.
const SnapshotVersion = 2

type snapshot struct {
	Version            int       `json:"version"`
	CurrentStep        Step      `json:"currentStep"`
	ProblemStatement   string    `json:"problemStatement"`
	SuggestedSolutions []string  `json:"suggestedSolutions"`
	ChosenSolution     string    `json:"chosenSolution"`
	TechStack          TechStack `json:"techStack"`
	DocumentTemplate   string    `json:"documentTemplate"`
	DocumentContent    string    `json:"documentContent"`
	EditedContent      string    `json:"editedContent"`
}

// Older snapshots used these names for the same fields.
var legacyKeys = map[string][]string{
	"suggestedSolutions": {"suggestedSolutionsList"},
	"documentTemplate":   {"brdStructureTemplate"},
	"documentContent":    {"generatedBrdContent"},
	"editedContent":      {"editedBrdContent"},
}

// EncodeSnapshot serializes the full state.
func EncodeSnapshot(s State) ([]byte, error) {
	solutions := s.SuggestedSolutions
	if solutions == nil {
		solutions = []string{}
	}
	return json.Marshal(snapshot{
		Version:            SnapshotVersion,
		CurrentStep:        s.CurrentStep,
		ProblemStatement:   s.ProblemStatement,
		SuggestedSolutions: solutions,
		ChosenSolution:     s.ChosenSolution,
		TechStack:          s.TechStack,
		DocumentTemplate:   s.DocumentTemplate,
		DocumentContent:    s.DocumentContent,
		EditedContent:      s.EditedContent,
	})
}

// DecodeSnapshot rebuilds a state from a stored snapshot. Only a payload that
// is not a JSON object is an error; any individual field that is missing or
// has an unexpected shape falls back to its empty value. A string tech stack
// is migrated into the frontend field.
func DecodeSnapshot(data []byte) (State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if raw == nil {
		return State{}, fmt.Errorf("decode snapshot: not an object")
	}

	var s State
	decodeField(raw, "currentStep", &s.CurrentStep)
	decodeField(raw, "problemStatement", &s.ProblemStatement)
	decodeField(raw, "suggestedSolutions", &s.SuggestedSolutions)
	decodeField(raw, "chosenSolution", &s.ChosenSolution)
	decodeField(raw, "documentTemplate", &s.DocumentTemplate)
	decodeField(raw, "documentContent", &s.DocumentContent)
	if !decodeField(raw, "editedContent", &s.EditedContent) {
		s.EditedContent = s.DocumentContent
	}
	s.TechStack = decodeTechStack(lookup(raw, "techStack"))

	if s.SuggestedSolutions == nil {
		s.SuggestedSolutions = []string{}
	}
	return s, nil
}

func lookup(raw map[string]json.RawMessage, key string) json.RawMessage {
	if v, ok := raw[key]; ok {
		return v
	}
	for _, alt := range legacyKeys[key] {
		if v, ok := raw[alt]; ok {
			return v
		}
	}
	return nil
}

// decodeField reports whether the key was present and decodable.
func decodeField[T any](raw map[string]json.RawMessage, key string, dst *T) bool {
	v := lookup(raw, key)
	if v == nil {
		return false
	}
	var tmp T
	if err := json.Unmarshal(v, &tmp); err != nil {
		return false
	}
	*dst = tmp
	return true
}

func decodeTechStack(v json.RawMessage) TechStack {
	if v == nil {
		return TechStack{}
	}
	var legacy string
	if err := json.Unmarshal(v, &legacy); err == nil {
		return TechStack{Frontend: legacy}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(v, &fields); err != nil {
		return TechStack{}
	}
	var t TechStack
	decodeField(fields, "frontend", &t.Frontend)
	decodeField(fields, "backend", &t.Backend)
	decodeField(fields, "database", &t.Database)
	return t
}
