package wizard

import "slices"

// Step identifies one stage of the wizard. Steps are numbered from 1 in flow order.
type Step int

// StepKind names what a step collects, independent of its number in a given flow.
type StepKind string

const (
	KindProblemStatement  StepKind = "problem_statement"
	KindSolutions         StepKind = "solutions"
	KindTechStack         StepKind = "tech_stack"
	KindStructureTemplate StepKind = "structure_template"
	KindDisplay           StepKind = "display"
)

// TechStack holds one free-text description per technology layer.
type TechStack struct {
	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
}

// IsZero reports whether no layer has been described.
func (t TechStack) IsZero() bool {
	return t.Frontend == "" && t.Backend == "" && t.Database == ""
}

// State is the single aggregate of everything collected during one document session.
type State struct {
	CurrentStep        Step      `json:"currentStep"`
	ProblemStatement   string    `json:"problemStatement"`
	SuggestedSolutions []string  `json:"suggestedSolutions"`
	ChosenSolution     string    `json:"chosenSolution"`
	TechStack          TechStack `json:"techStack"`
	DocumentTemplate   string    `json:"documentTemplate"`
	DocumentContent    string    `json:"documentContent"`
	EditedContent      string    `json:"editedContent"`
}

// ExportText returns the text downloads are built from. The edited copy starts
// equal to the generated document and is authoritative afterwards.
func (s *State) ExportText() string {
	return s.EditedContent
}

// Clone returns a deep copy so callers never share the solutions slice.
func (s State) Clone() State {
	out := s
	out.SuggestedSolutions = slices.Clone(s.SuggestedSolutions)
	return out
}

// Equal compares two states field by field, treating nil and empty solution lists alike.
func (s State) Equal(o State) bool {
	if s.CurrentStep != o.CurrentStep ||
		s.ProblemStatement != o.ProblemStatement ||
		s.ChosenSolution != o.ChosenSolution ||
		s.TechStack != o.TechStack ||
		s.DocumentTemplate != o.DocumentTemplate ||
		s.DocumentContent != o.DocumentContent ||
		s.EditedContent != o.EditedContent {
		return false
	}
	if len(s.SuggestedSolutions) != len(o.SuggestedSolutions) {
		return false
	}
	for i := range s.SuggestedSolutions {
		if s.SuggestedSolutions[i] != o.SuggestedSolutions[i] {
			return false
		}
	}
	return true
}
