package llm

import "context"

// Request contains form-generation parameters
type Request struct {
	// Prompt is the user's description of the service or form to build.
	Prompt string
	// CurrentJSON is the JSON of the definition being revised, empty for a
	// fresh generation.
	CurrentJSON string
}

// Response contains the LLM generation result. RawJSON is the model output
// with any markdown fencing stripped; parsing and validation happen in the
// prototype service.
type Response struct {
	RawJSON    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// GenerateForm generates a form definition from natural language
	GenerateForm(ctx context.Context, req Request, model string) (*Response, error)
}
