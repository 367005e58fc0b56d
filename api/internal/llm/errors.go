package llm

import "fmt"

// UpstreamError is any failure reaching the provider: transport, timeout,
// authentication, or a provider envelope without a reply.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream call failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err unless it is already an *UpstreamError or nil.
func Upstream(provider string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*UpstreamError); ok {
		return err
	}
	return &UpstreamError{Provider: provider, Err: err}
}
