package errs

import (
	"fmt"
	"time"
)

// Kind represents the category of a pipeline error
type Kind string

const (
	// KindSearch represents vendor search/query errors
	KindSearch Kind = "search"
	// KindNormalization represents record normalization errors
	KindNormalization Kind = "normalization"
	// KindLink represents affiliate link resolution errors
	KindLink Kind = "link"
	// KindRateLimit represents vendor rate limiting errors
	KindRateLimit Kind = "rate_limit"
	// KindPublish represents publish errors
	KindPublish Kind = "publish"
	// KindConfiguration represents configuration errors
	KindConfiguration Kind = "configuration"
)

// PipelineError represents an error raised somewhere in the deal pipeline
type PipelineError struct {
	Kind     Kind
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Kind, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must abort the process.
// Only configuration errors are fatal; everything else is skip-and-continue.
func (e *PipelineError) IsFatal() bool {
	return e.Kind == KindConfiguration
}

// New creates a new PipelineError
func New(kind Kind, provider, message string, err error) *PipelineError {
	return &PipelineError{
		Kind:     kind,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewSearch creates a new vendor search error
func NewSearch(provider, message string, err error) *PipelineError {
	return New(KindSearch, provider, message, err)
}

// NewNormalization creates a new normalization error
func NewNormalization(provider, message string) *PipelineError {
	return New(KindNormalization, provider, message, nil)
}

// NewLink creates a new affiliate link resolution error
func NewLink(provider, message string, err error) *PipelineError {
	return New(KindLink, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, duration time.Duration) *PipelineError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(KindRateLimit, provider, message, nil)
}

// NewPublish creates a new publish error
func NewPublish(provider, message string, err error) *PipelineError {
	return New(KindPublish, provider, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(KindConfiguration, "", message, err)
}
