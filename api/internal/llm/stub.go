package llm

import (
	"context"
	"sync"
)

// Stub is an in-memory Engine for tests. It records every request and answers
// with Fn when set, otherwise with Text/Err.
type Stub struct {
	EngineName string
	Text       string
	Err        error
	Fn         func(Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

func NewStub(text string) *Stub { return &Stub{Text: text} }

func (s *Stub) Name() string {
	if s.EngineName != "" {
		return s.EngineName
	}
	return "stub"
}

func (s *Stub) GetModel() string { return "stub-model" }

func (s *Stub) Complete(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	if s.Fn != nil {
		return s.Fn(req)
	}
	if s.Err != nil {
		return "", Upstream(s.Name(), s.Err)
	}
	return s.Text, nil
}

func (s *Stub) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Stub) LastCall() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return Request{}, false
	}
	return s.calls[len(s.calls)-1], true
}
