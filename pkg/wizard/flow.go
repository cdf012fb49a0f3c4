package wizard

import "strings"

// TechStackMode selects which tech stack fields a flow requires.
type TechStackMode string

const (
	// TechStackSplit asks for separate frontend, backend and database descriptions.
	TechStackSplit TechStackMode = "split"
	// TechStackCombined asks for one description, stored in TechStack.Frontend.
	TechStackCombined TechStackMode = "combined"
)

// Flow is the configured shape of the wizard. The zero value is a four step
// flow without template customization and with split tech stack fields.
type Flow struct {
	TemplateStep    bool
	TechStackMode   TechStackMode
	DefaultTemplate string
}

// StepInfo describes one step of a flow for presentation.
type StepInfo struct {
	Number Step     `json:"number"`
	Kind   StepKind `json:"key"`
	Title  string   `json:"title"`
}

var stepTitles = map[StepKind]string{
	KindProblemStatement:  "Problem Statement",
	KindSolutions:         "Potential Solutions",
	KindTechStack:         "Technology Stack",
	KindStructureTemplate: "Customize BRD Structure",
	KindDisplay:           "Your Generated BRD",
}

// Kinds lists the flow's steps in order.
func (f Flow) Kinds() []StepKind {
	kinds := []StepKind{KindProblemStatement, KindSolutions, KindTechStack}
	if f.TemplateStep {
		kinds = append(kinds, KindStructureTemplate)
	}
	return append(kinds, KindDisplay)
}

// Steps returns numbered step descriptions.
func (f Flow) Steps() []StepInfo {
	kinds := f.Kinds()
	out := make([]StepInfo, len(kinds))
	for i, k := range kinds {
		out[i] = StepInfo{Number: Step(i + 1), Kind: k, Title: stepTitles[k]}
	}
	return out
}

func (f Flow) First() Step { return 1 }

func (f Flow) Last() Step { return Step(len(f.Kinds())) }

// Contains reports whether step is a valid step number for this flow.
func (f Flow) Contains(step Step) bool {
	return step >= f.First() && step <= f.Last()
}

// KindOf maps a step number to what it collects.
func (f Flow) KindOf(step Step) (StepKind, bool) {
	if !f.Contains(step) {
		return "", false
	}
	return f.Kinds()[step-1], true
}

// StepOf maps a step kind to its number in this flow.
func (f Flow) StepOf(kind StepKind) (Step, bool) {
	for i, k := range f.Kinds() {
		if k == kind {
			return Step(i + 1), true
		}
	}
	return 0, false
}

// Clamp forces step into the flow's range.
func (f Flow) Clamp(step Step) Step {
	if step < f.First() {
		return f.First()
	}
	if step > f.Last() {
		return f.Last()
	}
	return step
}

// Fresh returns the initial state of a new session.
func (f Flow) Fresh() State {
	s := State{
		CurrentStep:        f.First(),
		SuggestedSolutions: []string{},
	}
	if f.TemplateStep {
		s.DocumentTemplate = f.DefaultTemplate
	}
	return s
}

// RequiredTechFields lists the tech stack fields the flow's mode requires.
func (f Flow) RequiredTechFields() []string {
	if f.TechStackMode == TechStackCombined {
		return []string{"frontend"}
	}
	return []string{"frontend", "backend", "database"}
}

// Complete reports whether the data a step collects is present in s.
func (f Flow) Complete(s *State, kind StepKind) bool {
	switch kind {
	case KindProblemStatement:
		return !blank(s.ProblemStatement)
	case KindSolutions:
		return !blank(s.ChosenSolution)
	case KindTechStack:
		return f.validateTechStack(s.TechStack) == nil
	case KindStructureTemplate:
		return !blank(s.DocumentTemplate)
	case KindDisplay:
		return s.DocumentContent != ""
	}
	return false
}

// CanEnter reports whether every step before target has its data.
func (f Flow) CanEnter(s *State, target Step) bool {
	if !f.Contains(target) {
		return false
	}
	kinds := f.Kinds()
	for i := 0; i < int(target)-1; i++ {
		if !f.Complete(s, kinds[i]) {
			return false
		}
	}
	return true
}

// Normalize repairs a restored state so it satisfies the flow's invariants:
// the step is clamped into range and moved back to the first step whose
// prerequisites hold.
func (f Flow) Normalize(s *State) {
	if s.SuggestedSolutions == nil {
		s.SuggestedSolutions = []string{}
	}
	if f.TemplateStep && s.DocumentTemplate == "" {
		s.DocumentTemplate = f.DefaultTemplate
	}
	s.CurrentStep = f.Clamp(s.CurrentStep)
	for s.CurrentStep > f.First() && !f.CanEnter(s, s.CurrentStep) {
		s.CurrentStep--
	}
}

func (f Flow) validateTechStack(t TechStack) error {
	values := map[string]string{
		"frontend": t.Frontend,
		"backend":  t.Backend,
		"database": t.Database,
	}
	for _, field := range f.RequiredTechFields() {
		if blank(values[field]) {
			if f.TechStackMode == TechStackCombined {
				return &ValidationError{Field: "techStack", Message: "Technology stack cannot be empty."}
			}
			return &ValidationError{Field: field, Message: strings.ToUpper(field[:1]) + field[1:] + " stack cannot be empty."}
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
