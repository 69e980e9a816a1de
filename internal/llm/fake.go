package llm

import (
	"context"
	"sync"
)

// Fake is a scripted Completer for tests. Responses are returned in order;
// once exhausted, the last response repeats. A nil Err applies to all calls.
type Fake struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
	calls     int
}

// Complete records the prompt and replays the next scripted response
func (f *Fake) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	idx := f.calls
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	f.calls++
	return f.Responses[idx], nil
}

// Calls returns how many completions have been requested
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
