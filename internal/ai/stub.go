package ai

import "context"

// StubClient is a scripted Client for tests.
type StubClient struct {
	Response string
	Err      error
	Down     bool

	// Prompts records every prompt passed to Complete.
	Prompts []string
}

func (s *StubClient) Available() bool { return !s.Down }

func (s *StubClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}
