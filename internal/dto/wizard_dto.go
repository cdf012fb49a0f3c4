package dto

import "brdgenius-be/pkg/wizard"

type SubmitProblemRequest struct {
	ProblemStatement string `json:"problemStatement" validate:"required,notblank,max=10000"`
}

type SelectSolutionRequest struct {
	Solution string `json:"solution" validate:"required,notblank,max=10000"`
}

// SubmitTechStackRequest carries all three layers. In combined mode only
// Frontend is used and holds the whole description, so the per-field checks
// happen in the wizard flow rather than here.
type SubmitTechStackRequest struct {
	Frontend string `json:"frontend" validate:"max=2000"`
	Backend  string `json:"backend" validate:"max=2000"`
	Database string `json:"database" validate:"max=2000"`
}

type SubmitTemplateRequest struct {
	Template string `json:"template" validate:"required,notblank,max=100000"`
}

// EditContentRequest may legitimately clear the document, so content is not required.
type EditContentRequest struct {
	Content string `json:"content" validate:"max=500000"`
}

type StepView struct {
	Number   wizard.Step     `json:"number"`
	Key      wizard.StepKind `json:"key"`
	Title    string          `json:"title"`
	Complete bool            `json:"complete"`
}

type WizardView struct {
	State                wizard.State    `json:"state"`
	Steps                []StepView      `json:"steps"`
	IsLoading            bool            `json:"isLoading"`
	IsSuggestionsLoading bool            `json:"isSuggestionsLoading"`
	IsGenerating         bool            `json:"isGenerating"`
	Notices              []wizard.Notice `json:"notices"`
}

type DefaultTemplateResponse struct {
	Template string `json:"template"`
}

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
