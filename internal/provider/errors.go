package provider

import "fmt"

// Error indicates a provider call that did not return a usable completion,
// usually a non-success HTTP status. Body carries whatever diagnostic detail
// could be pulled from the failed response.
type Error struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *Error) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d)", e.Provider, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// CredentialError indicates the selected provider has no API key configured.
// It fails the affected attempt only; the caller may fall back to another
// provider.
type CredentialError struct {
	Provider string
	EnvVar   string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s API key not configured (set %s)", e.Provider, e.EnvVar)
}
