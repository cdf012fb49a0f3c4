package wizard

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateFlow() Flow {
	return Flow{TemplateStep: true, TechStackMode: TechStackSplit, DefaultTemplate: "# {{projectName}}"}
}

func walkToDisplay(t *testing.T, f Flow) State {
	t.Helper()
	s := f.Fresh()
	require.NoError(t, f.SubmitProblem(&s, "Users lose track of tasks"))
	require.NoError(t, f.ApplySuggestions(&s, []string{"Task tracker app", "Reminder bot", "Calendar integration"}))
	require.NoError(t, f.SelectSolution(&s, "Task tracker app"))
	next, err := f.SubmitTechStack(&s, TechStack{Frontend: "React", Backend: "Node.js", Database: "PostgreSQL"})
	require.NoError(t, err)
	if next == KindStructureTemplate {
		next, err = f.SubmitTemplate(&s, s.DocumentTemplate)
		require.NoError(t, err)
	}
	require.Equal(t, KindDisplay, next)
	return s
}

func TestFlowSteps(t *testing.T) {
	tests := []struct {
		name string
		flow Flow
		want []StepKind
	}{
		{
			name: "with template",
			flow: templateFlow(),
			want: []StepKind{KindProblemStatement, KindSolutions, KindTechStack, KindStructureTemplate, KindDisplay},
		},
		{
			name: "without template",
			flow: Flow{},
			want: []StepKind{KindProblemStatement, KindSolutions, KindTechStack, KindDisplay},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flow.Kinds())
			assert.Equal(t, Step(len(tt.want)), tt.flow.Last())
			for i, info := range tt.flow.Steps() {
				assert.Equal(t, Step(i+1), info.Number)
				assert.NotEmpty(t, info.Title)
			}
		})
	}
}

func TestFreshState(t *testing.T) {
	f := templateFlow()
	s := f.Fresh()
	assert.Equal(t, Step(1), s.CurrentStep)
	assert.Empty(t, s.ProblemStatement)
	assert.NotNil(t, s.SuggestedSolutions)
	assert.Empty(t, s.SuggestedSolutions)
	assert.True(t, s.TechStack.IsZero())
	assert.Equal(t, "# {{projectName}}", s.DocumentTemplate)

	assert.Empty(t, Flow{}.Fresh().DocumentTemplate)
}

func TestStepAdvancesByOnePerSubmission(t *testing.T) {
	f := templateFlow()
	s := f.Fresh()

	require.NoError(t, f.SubmitProblem(&s, "problem"))
	assert.Equal(t, Step(1), s.CurrentStep, "problem alone does not advance")

	require.NoError(t, f.ApplySuggestions(&s, []string{"a"}))
	assert.Equal(t, Step(2), s.CurrentStep)

	require.NoError(t, f.SelectSolution(&s, "a"))
	assert.Equal(t, Step(3), s.CurrentStep)

	next, err := f.SubmitTechStack(&s, TechStack{Frontend: "React", Backend: "Go", Database: "Postgres"})
	require.NoError(t, err)
	assert.Equal(t, KindStructureTemplate, next)
	assert.Equal(t, Step(4), s.CurrentStep)

	next, err = f.SubmitTemplate(&s, "# T")
	require.NoError(t, err)
	assert.Equal(t, KindDisplay, next)
	assert.Equal(t, Step(5), s.CurrentStep)
}

func TestTechStackGoesStraightToDisplayWithoutTemplate(t *testing.T) {
	f := Flow{TechStackMode: TechStackSplit}
	s := walkToDisplay(t, f)
	assert.Equal(t, Step(4), s.CurrentStep)

	_, err := f.SubmitTemplate(&s, "# T")
	assert.ErrorIs(t, err, ErrStepUnavailable)
}

func TestValidationBlocksTransition(t *testing.T) {
	f := templateFlow()
	s := f.Fresh()

	err := f.SubmitProblem(&s, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "problemStatement", verr.Field)
	assert.Equal(t, Step(1), s.CurrentStep)
	assert.Empty(t, s.ProblemStatement)

	require.NoError(t, f.SubmitProblem(&s, "p"))
	require.NoError(t, f.ApplySuggestions(&s, nil))
	require.ErrorAs(t, f.SelectSolution(&s, ""), &verr)
	assert.Equal(t, Step(2), s.CurrentStep)

	require.NoError(t, f.SelectSolution(&s, "mine"))
	_, err = f.SubmitTechStack(&s, TechStack{Frontend: "React", Backend: "", Database: "SQL"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "backend", verr.Field)
	assert.Equal(t, Step(3), s.CurrentStep)
	assert.True(t, s.TechStack.IsZero())
}

func TestCombinedTechStack(t *testing.T) {
	f := Flow{TechStackMode: TechStackCombined}
	s := f.Fresh()
	require.NoError(t, f.SubmitProblem(&s, "p"))
	require.NoError(t, f.ApplySuggestions(&s, []string{"x"}))
	require.NoError(t, f.SelectSolution(&s, "x"))

	_, err := f.SubmitTechStack(&s, TechStack{Backend: "ignored"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "techStack", verr.Field)

	next, err := f.SubmitTechStack(&s, TechStack{Frontend: "React, Node.js, PostgreSQL", Backend: "dropped"})
	require.NoError(t, err)
	assert.Equal(t, KindDisplay, next)
	assert.Equal(t, TechStack{Frontend: "React, Node.js, PostgreSQL"}, s.TechStack)
}

func TestOperationsRequireTheirStep(t *testing.T) {
	f := templateFlow()
	s := f.Fresh()

	assert.ErrorIs(t, f.SelectSolution(&s, "x"), ErrNotAtStep)
	_, err := f.SubmitTechStack(&s, TechStack{Frontend: "a", Backend: "b", Database: "c"})
	assert.ErrorIs(t, err, ErrNotAtStep)
	assert.ErrorIs(t, f.EditContent(&s, "x"), ErrNotAtStep)
	assert.ErrorIs(t, f.CompleteGeneration(&s, "x"), ErrNotAtStep)
	assert.Equal(t, f.Fresh(), s)
}

func TestEmptySuggestionsStillAdvance(t *testing.T) {
	f := templateFlow()
	s := f.Fresh()
	require.NoError(t, f.SubmitProblem(&s, "p"))
	require.NoError(t, f.ApplySuggestions(&s, []string{" ", ""}))
	assert.Equal(t, Step(2), s.CurrentStep)
	assert.NotNil(t, s.SuggestedSolutions)
	assert.Empty(t, s.SuggestedSolutions)
}

func TestGenerationAndEditing(t *testing.T) {
	f := templateFlow()
	s := walkToDisplay(t, f)

	require.NoError(t, f.BeginGeneration(&s))
	require.NoError(t, f.CompleteGeneration(&s, "# Title\n\nBody"))
	assert.Equal(t, "# Title\n\nBody", s.DocumentContent)
	assert.Equal(t, "# Title\n\nBody", s.EditedContent)

	require.NoError(t, f.EditContent(&s, "# Title\n\nEdited"))
	assert.Equal(t, "# Title\n\nBody", s.DocumentContent)
	assert.Equal(t, "# Title\n\nEdited", s.EditedContent)
	assert.Equal(t, "# Title\n\nEdited", s.ExportText())

	require.NoError(t, f.FailGeneration(&s))
	assert.Empty(t, s.DocumentContent)
	assert.Empty(t, s.EditedContent)
	assert.Equal(t, Step(5), s.CurrentStep)
}

func TestGoBackKeepsData(t *testing.T) {
	f := templateFlow()
	s := walkToDisplay(t, f)
	before := s.Clone()

	for want := s.CurrentStep - 1; want >= 1; want-- {
		assert.True(t, f.GoBack(&s))
		assert.Equal(t, want, s.CurrentStep)
	}
	assert.False(t, f.GoBack(&s))
	assert.Equal(t, Step(1), s.CurrentStep)

	s.CurrentStep = before.CurrentStep
	assert.True(t, s.Equal(before))
}

func TestCloneKeepsEmptySolutionList(t *testing.T) {
	f := templateFlow()

	fresh := f.Fresh().Clone()
	require.NotNil(t, fresh.SuggestedSolutions)
	out, err := json.Marshal(fresh)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"suggestedSolutions":[]`)

	s := f.Fresh()
	require.NoError(t, f.SubmitProblem(&s, "Users lose track of tasks"))
	require.NoError(t, f.ApplySuggestions(&s, nil))
	clone := s.Clone()
	require.NotNil(t, clone.SuggestedSolutions)
	assert.Empty(t, clone.SuggestedSolutions)

	s.SuggestedSolutions = []string{"Task tracker app"}
	clone = s.Clone()
	clone.SuggestedSolutions[0] = "changed"
	assert.Equal(t, "Task tracker app", s.SuggestedSolutions[0])
}

func TestRestartEqualsFresh(t *testing.T) {
	f := templateFlow()
	s := walkToDisplay(t, f)
	s = f.Restart()
	assert.Equal(t, f.Fresh(), s)
}

func TestNormalize(t *testing.T) {
	f := templateFlow()

	tests := []struct {
		name  string
		state State
		want  Step
	}{
		{name: "zero step clamps to first", state: State{CurrentStep: 0}, want: 1},
		{name: "too large clamps and falls back", state: State{CurrentStep: 9}, want: 1},
		{name: "missing prerequisites fall back", state: State{CurrentStep: 3, ProblemStatement: "p"}, want: 2},
		{
			name: "complete prerequisites keep step",
			state: State{
				CurrentStep:      4,
				ProblemStatement: "p",
				ChosenSolution:   "s",
				TechStack:        TechStack{Frontend: "a", Backend: "b", Database: "c"},
			},
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.state
			f.Normalize(&s)
			assert.Equal(t, tt.want, s.CurrentStep)
			assert.NotNil(t, s.SuggestedSolutions)
			assert.Equal(t, f.DefaultTemplate, s.DocumentTemplate)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := error(&ValidationError{Field: "solution", Message: "Please select a solution."})
	assert.Equal(t, "solution: Please select a solution.", err.Error())
	assert.False(t, errors.Is(err, ErrNotAtStep))
}
