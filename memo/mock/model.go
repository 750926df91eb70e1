package mock

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/tmc/langchaingo/llms"
)

// MockModel is a test double for llms.Model.
// It allows customizing behavior via function fields.
type MockModel struct {
	// GenerateFunc is called by GenerateContent if set.
	// If nil, the model answers "echo: " followed by the prompt.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	callCount atomic.Int64
}

var _ llms.Model = (*MockModel)(nil)

// NewMockModel creates a mock model with the default echo behavior.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// GenerateContent answers the text of the last message.
func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.callCount.Add(1)

	if len(messages) == 0 {
		return nil, errors.New("no messages")
	}
	var parts []string
	for _, p := range messages[len(messages)-1].Parts {
		if text, ok := p.(llms.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	prompt := strings.Join(parts, "")

	answer := "echo: " + prompt
	if m.GenerateFunc != nil {
		var err error
		if answer, err = m.GenerateFunc(ctx, prompt); err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: answer}},
	}, nil
}

// Call implements the deprecated single-prompt entry point.
func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// CallCount returns the number of times GenerateContent was called.
func (m *MockModel) CallCount() int {
	return int(m.callCount.Load())
}
