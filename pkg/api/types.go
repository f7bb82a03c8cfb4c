package api

import "time"

// ModelDescriptor is one entry of the daemon's installed-model listing.
type ModelDescriptor struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

// Identifier returns the name used to address the model in show requests.
func (m ModelDescriptor) Identifier() string {
	if m.Model != "" {
		return m.Model
	}
	return m.Name
}

// ModelDetails holds the summary metadata the daemon reports for a model.
type ModelDetails struct {
	ParentModel       string   `json:"parent_model,omitempty"`
	Format            string   `json:"format,omitempty"`
	Family            string   `json:"family,omitempty"`
	Families          []string `json:"families,omitempty"`
	ParameterSize     string   `json:"parameter_size,omitempty"`
	QuantizationLevel string   `json:"quantization_level,omitempty"`
}

// ListResponse is the body of GET /api/tags.
type ListResponse struct {
	Models []ModelDescriptor `json:"models"`
}

// ShowRequest is the body of POST /api/show.
type ShowRequest struct {
	Model   string `json:"model"`
	Verbose bool   `json:"verbose,omitempty"`
}

// ErrorResponse is the error envelope of non-200 JSON replies, from the
// daemon and from the web API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionState is the JSON view of one interactive session.
type SessionState struct {
	SubmittedModel string `json:"submitted_model"`
	SystemPrompt   string `json:"system_prompt"`
	Config         string `json:"config"`
	Phase          string `json:"phase"`
}

// ModelListResponse is returned by the web UI's model listing endpoint.
type ModelListResponse struct {
	Models []string `json:"models"`
}
