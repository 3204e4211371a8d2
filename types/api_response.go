package types

// Response envelopes. Handlers build them with gin.H; these types exist for
// the swagger annotations.

// ErrorBody is the shape rendered by the error middleware.
type ErrorBody struct {
	Success bool              `json:"success" example:"false"`
	Error   string            `json:"error" example:"Form not found"`
	Type    string            `json:"type,omitempty" example:"NOT_FOUND"`
	Code    string            `json:"code,omitempty"`
	Fields  []string          `json:"fields,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type FormResponse struct {
	Success bool `json:"success" example:"true"`
	Form    Form `json:"form"`
}

type FormListResponse struct {
	Success bool   `json:"success" example:"true"`
	Forms   []Form `json:"forms"`
}

type PublicFormResponse struct {
	Success bool       `json:"success" example:"true"`
	Form    PublicForm `json:"form"`
}

type SubmitResponse struct {
	Success      bool   `json:"success" example:"true"`
	SubmissionID string `json:"submissionId"`
	Replayed     bool   `json:"replayed,omitempty"`
}

type SubmissionListResponse struct {
	Success     bool         `json:"success" example:"true"`
	Submissions []Submission `json:"submissions"`
}

type TemplateResponse struct {
	Success  bool         `json:"success" example:"true"`
	Template FormTemplate `json:"template"`
}

type TemplateListResponse struct {
	Success   bool           `json:"success" example:"true"`
	Templates []FormTemplate `json:"templates"`
}

type CreditsResponse struct {
	Success bool `json:"success" example:"true"`
	CreditSummary
}

type SiteResponse struct {
	Success bool `json:"success" example:"true"`
	Site    Site `json:"site"`
}

type SiteListResponse struct {
	Success bool   `json:"success" example:"true"`
	Sites   []Site `json:"sites"`
}

type GrantResponse struct {
	Success   bool       `json:"success" example:"true"`
	Embedding EmbedGrant `json:"embedding"`
}

type GrantListResponse struct {
	Success    bool         `json:"success" example:"true"`
	Embeddings []EmbedGrant `json:"embeddings"`
}

type UploadResponse struct {
	Success bool         `json:"success" example:"true"`
	File    UploadedFile `json:"file"`
}
