package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/internal/repository/memory"
	"brdgenius-be/pkg/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFlow = wizard.Flow{
	TemplateStep:    true,
	TechStackMode:   wizard.TechStackSplit,
	DefaultTemplate: "# BRD: {{projectName}}",
}

func newRepo(store *memory.SnapshotStore) WizardStateRepository {
	return NewWizardStateRepository(store, testFlow, "brdGeniusState", logger.NewNopLogger())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingStore) Put(context.Context, string, []byte) error { return errors.New("connection refused") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("connection refused") }

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(memory.NewSnapshotStore(time.Hour))

	state := wizard.State{
		CurrentStep:        5,
		ProblemStatement:   "Users lose track of tasks",
		SuggestedSolutions: []string{"Task tracker app", "Reminder bot", "Calendar integration"},
		ChosenSolution:     "Task tracker app",
		TechStack:          wizard.TechStack{Frontend: "React", Backend: "Node.js", Database: "PostgreSQL"},
		DocumentTemplate:   "# BRD",
		DocumentContent:    "# Title\n\nBody",
		EditedContent:      "# Title\n\nEdited",
	}
	repo.Save(ctx, "s1", state)

	got, found := repo.Load(ctx, "s1")
	require.True(t, found)
	assert.True(t, state.Equal(got))

	_, found = repo.Load(ctx, "other")
	assert.False(t, found)
}

func TestLoadMissingReturnsFresh(t *testing.T) {
	got, found := newRepo(memory.NewSnapshotStore(time.Hour)).Load(context.Background(), "nobody")
	assert.False(t, found)
	assert.Equal(t, testFlow.Fresh(), got)
}

func TestLoadCorruptDiscardsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore(time.Hour)
	require.NoError(t, store.Put(ctx, "brdGeniusState:s1", []byte("{not json")))

	got, found := newRepo(store).Load(ctx, "s1")
	assert.False(t, found)
	assert.Equal(t, testFlow.Fresh(), got)

	_, exists, err := store.Get(ctx, "brdGeniusState:s1")
	require.NoError(t, err)
	assert.False(t, exists, "corrupt snapshot should be removed")
}

func TestLoadMigratesLegacyTechStack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore(time.Hour)
	legacy := `{"currentStep":3,"problemStatement":"p","suggestedSolutionsList":["a"],"chosenSolution":"a","techStack":"Node.js"}`
	require.NoError(t, store.Put(ctx, "brdGeniusState:s1", []byte(legacy)))

	got, found := newRepo(store).Load(ctx, "s1")
	require.True(t, found)
	assert.Equal(t, wizard.TechStack{Frontend: "Node.js", Backend: "", Database: ""}, got.TechStack)
	assert.Equal(t, wizard.Step(3), got.CurrentStep)
	assert.Equal(t, []string{"a"}, got.SuggestedSolutions)
	assert.Equal(t, testFlow.DefaultTemplate, got.DocumentTemplate)
}

func TestLoadNormalizesInconsistentStep(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore(time.Hour)
	require.NoError(t, store.Put(ctx, "brdGeniusState:s1", []byte(`{"currentStep":5,"problemStatement":"p"}`)))

	got, found := newRepo(store).Load(ctx, "s1")
	require.True(t, found)
	assert.Equal(t, wizard.Step(2), got.CurrentStep)
}

func TestClearRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(memory.NewSnapshotStore(time.Hour))
	state := testFlow.Fresh()
	state.ProblemStatement = "p"
	repo.Save(ctx, "s1", state)

	repo.Clear(ctx, "s1")
	got, found := repo.Load(ctx, "s1")
	assert.False(t, found)
	assert.Equal(t, testFlow.Fresh(), got)
}

func TestStoreFailuresNeverSurface(t *testing.T) {
	ctx := context.Background()
	repo := NewWizardStateRepository(failingStore{}, testFlow, "brdGeniusState", logger.NewNopLogger())

	assert.NotPanics(t, func() {
		repo.Save(ctx, "s1", testFlow.Fresh())
		repo.Clear(ctx, "s1")
	})
	got, found := repo.Load(ctx, "s1")
	assert.False(t, found)
	assert.Equal(t, testFlow.Fresh(), got)
}
