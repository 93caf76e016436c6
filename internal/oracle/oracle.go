// Package oracle sends recordings and prompts to the language model that
// transcribes and analyzes calls.
package oracle

import (
	"context"
	"errors"
)

// Task names a kind of oracle call. It labels logs and metrics.
type Task string

const (
	TaskTranscription Task = "transcription"
	TaskAnalysis      Task = "analysis"
	TaskConversation  Task = "conversation"
)

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("oracle: empty response")

// Request is one model call. Audio is optional; conversation reviews are
// text-only.
type Request struct {
	Task        Task
	Prompt      string
	Audio       []byte
	MIMEType    string
	Temperature float32
}

// Oracle returns the model's raw text answer. Callers decode it.
type Oracle interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
