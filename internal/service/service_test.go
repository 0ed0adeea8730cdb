package service

import (
	"context"
	"sync"
	"testing"

	"supplier-portal/internal/store"
	"supplier-portal/pkg/genai"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSeededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	_, err := s.Seed(context.Background(), store.DemoData())
	require.NoError(t, err)
	return s
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	fn      func(ctx context.Context, call int) (*genai.Result, error)
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string, grounded bool) (*genai.Result, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.fn(ctx, call)
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func textResult(text string, citations ...genai.Citation) func(context.Context, int) (*genai.Result, error) {
	return func(context.Context, int) (*genai.Result, error) {
		if citations == nil {
			citations = []genai.Citation{}
		}
		return &genai.Result{Text: text, Citations: citations}, nil
	}
}
