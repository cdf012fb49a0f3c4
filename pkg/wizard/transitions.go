package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAtStep is returned when an operation is attempted from a step that does not offer it.
	ErrNotAtStep = errors.New("operation not available at the current step")
	// ErrStepUnavailable is returned when a step is configured out of the flow.
	ErrStepUnavailable = errors.New("step is not part of this wizard flow")
)

// ValidationError reports an empty or otherwise unacceptable form value.
// It blocks the transition and leaves the state untouched.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (f Flow) requireAt(s *State, kind StepKind) error {
	step, ok := f.StepOf(kind)
	if !ok {
		return ErrStepUnavailable
	}
	if s.CurrentStep != step {
		current, _ := f.KindOf(s.CurrentStep)
		return fmt.Errorf("%w: %s requested while on %s", ErrNotAtStep, kind, current)
	}
	return nil
}

func (f Flow) advance(s *State) StepKind {
	if s.CurrentStep < f.Last() {
		s.CurrentStep++
	}
	kind, _ := f.KindOf(s.CurrentStep)
	return kind
}

// SubmitProblem validates and records the problem statement. The step does
// not change; ApplySuggestions moves on once the suggestion call settles.
func (f Flow) SubmitProblem(s *State, text string) error {
	if err := f.requireAt(s, KindProblemStatement); err != nil {
		return err
	}
	if blank(text) {
		return &ValidationError{Field: "problemStatement", Message: "Problem statement cannot be empty."}
	}
	s.ProblemStatement = text
	return nil
}

// ApplySuggestions stores the suggestion result (possibly empty) and moves to
// the solutions step. Blank entries are dropped.
func (f Flow) ApplySuggestions(s *State, solutions []string) error {
	if err := f.requireAt(s, KindProblemStatement); err != nil {
		return err
	}
	cleaned := make([]string, 0, len(solutions))
	for _, sol := range solutions {
		if sol = strings.TrimSpace(sol); sol != "" {
			cleaned = append(cleaned, sol)
		}
	}
	s.SuggestedSolutions = cleaned
	f.advance(s)
	return nil
}

// SelectSolution records the chosen solution, which may come from the
// suggestion list or be typed freely.
func (f Flow) SelectSolution(s *State, solution string) error {
	if err := f.requireAt(s, KindSolutions); err != nil {
		return err
	}
	if blank(solution) {
		return &ValidationError{Field: "solution", Message: "Please select a solution."}
	}
	s.ChosenSolution = solution
	f.advance(s)
	return nil
}

// SubmitTechStack records the tech stack and returns the kind of the step
// entered, so the caller knows when generation has to start.
func (f Flow) SubmitTechStack(s *State, stack TechStack) (StepKind, error) {
	if err := f.requireAt(s, KindTechStack); err != nil {
		return "", err
	}
	if f.TechStackMode == TechStackCombined {
		stack = TechStack{Frontend: stack.Frontend}
	}
	if err := f.validateTechStack(stack); err != nil {
		return "", err
	}
	s.TechStack = stack
	return f.advance(s), nil
}

// SubmitTemplate records the customized document template.
func (f Flow) SubmitTemplate(s *State, markdown string) (StepKind, error) {
	if err := f.requireAt(s, KindStructureTemplate); err != nil {
		return "", err
	}
	if blank(markdown) {
		return "", &ValidationError{Field: "template", Message: "BRD structure template cannot be empty."}
	}
	s.DocumentTemplate = markdown
	return f.advance(s), nil
}

// BeginGeneration clears any previous document before a generation attempt.
func (f Flow) BeginGeneration(s *State) error {
	if err := f.requireAt(s, KindDisplay); err != nil {
		return err
	}
	s.DocumentContent = ""
	s.EditedContent = ""
	return nil
}

// CompleteGeneration stores a generated document as both the original and the editable copy.
func (f Flow) CompleteGeneration(s *State, document string) error {
	if err := f.requireAt(s, KindDisplay); err != nil {
		return err
	}
	s.DocumentContent = document
	s.EditedContent = document
	return nil
}

// FailGeneration leaves the session on the display step with an empty document.
func (f Flow) FailGeneration(s *State) error {
	if err := f.requireAt(s, KindDisplay); err != nil {
		return err
	}
	s.DocumentContent = ""
	s.EditedContent = ""
	return nil
}

// EditContent replaces the editable copy. The generated document is never touched.
func (f Flow) EditContent(s *State, text string) error {
	if err := f.requireAt(s, KindDisplay); err != nil {
		return err
	}
	s.EditedContent = text
	return nil
}

// GoBack moves one step back, keeping everything collected so far.
// It reports false when already on the first step.
func (f Flow) GoBack(s *State) bool {
	if s.CurrentStep <= f.First() {
		return false
	}
	s.CurrentStep--
	return true
}

// Restart discards the session and returns the fresh state.
func (f Flow) Restart() State {
	return f.Fresh()
}
