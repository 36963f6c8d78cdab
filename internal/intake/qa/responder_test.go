// internal/intake/qa/responder_test.go
package qa

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-intake/internal/common/config"
	"finance-intake/internal/common/database"
	"finance-intake/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeExternal struct {
	answer Answer
	err    error
	calls  int
}

func (f *fakeExternal) Ask(_ context.Context, _ string, _ map[string]interface{}) (Answer, error) {
	f.calls++
	return f.answer, f.err
}

func newTestCache(t *testing.T) *AnswerCache {
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewAnswerCache(client, time.Minute, logger.NewTestLogger(t))
}

// ==========================
// Question Heuristic Tests
// ==========================

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{input: "Acme Robotics LLC", expected: false},
		{input: "12-3456789", expected: false},
		{input: "is that safe?", expected: true},
		{input: "what is APR", expected: true},
		{input: "explain the lease option", expected: true},
		{input: "tell me about financing", expected: true},
		{input: "can you repeat that", expected: true},
		{input: "Delaware", expected: false},
		// Markers match whole words only.
		{input: "visit our showroom tomorrow", expected: false},
		{input: "Howard Street Bakery", expected: false},
		{input: "whatever works", expected: false},
		{input: "how does this work", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsQuestion(tt.input))
		})
	}
}

// ==========================
// Answer Resolution Tests
// ==========================

func TestResponder_TopicsBeforeExternal(t *testing.T) {
	external := &fakeExternal{answer: Answer{Message: "from service"}}
	r := NewResponder(external, nil, logger.NewTestLogger(t))

	answer := r.Answer(context.Background(), "what's the difference between financing and leasing?", nil)

	assert.Contains(t, answer.Message, "own the equipment")
	assert.Zero(t, external.calls, "keyword topics must short-circuit the external service")
}

func TestResponder_TopicKeywords(t *testing.T) {
	r := NewResponder(nil, nil, logger.NewTestLogger(t))

	tests := []struct {
		name     string
		question string
		fragment string
	}{
		{name: "credit", question: "does my credit score matter?", fragment: "750 or above"},
		{name: "apr", question: "what will my interest rate be?", fragment: "APR"},
		{name: "documents", question: "why do you need my license?", fragment: "business license"},
		{name: "process", question: "how long does this take?", fragment: "under ten minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := r.Answer(context.Background(), tt.question, nil)
			assert.Contains(t, answer.Message, tt.fragment)
		})
	}
}

func TestResponder_ExternalSuccess(t *testing.T) {
	external := &fakeExternal{answer: Answer{Message: "from service"}}
	r := NewResponder(external, nil, logger.NewTestLogger(t))

	answer := r.Answer(context.Background(), "do you ship internationally?", nil)

	assert.Equal(t, "from service", answer.Message)
	assert.Equal(t, 1, external.calls)
}

func TestResponder_FallbackOnExternalError(t *testing.T) {
	external := &fakeExternal{err: errors.New("connection refused")}
	r := NewResponder(external, nil, logger.NewTestLogger(t))

	answer := r.Answer(context.Background(), "do you ship internationally?", nil)

	assert.Equal(t, FallbackAnswer, answer)
}

func TestResponder_FallbackWithoutExternal(t *testing.T) {
	r := NewResponder(nil, nil, logger.NewTestLogger(t))
	answer := r.Answer(context.Background(), "do you ship internationally?", nil)
	assert.Equal(t, FallbackAnswer, answer)
}

// ==========================
// Cache Tests
// ==========================

func TestResponder_CachesExternalAnswers(t *testing.T) {
	external := &fakeExternal{answer: Answer{Message: "from service"}}
	r := NewResponder(external, newTestCache(t), logger.NewTestLogger(t))
	ctx := context.Background()

	first := r.Answer(ctx, "do you ship internationally?", nil)
	second := r.Answer(ctx, "do you ship internationally?", nil)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, external.calls, "second ask must be served from cache")
}

func TestAnswerCache_NormalizesQuestions(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "Do you ship internationally?", Answer{Message: "yes"})

	got, ok := cache.Get(ctx, "  do you   ship internationally?  ")
	require.True(t, ok)
	assert.Equal(t, "yes", got.Message)
}

func TestAnswerCache_MissOnUnknownQuestion(t *testing.T) {
	cache := newTestCache(t)
	_, ok := cache.Get(context.Background(), "never asked")
	assert.False(t, ok)
}

func TestAnswerCache_DropsCorruptEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	cache := NewAnswerCache(client, time.Minute, logger.NewTestLogger(t))

	require.NoError(t, mr.Set(cacheKey("broken"), "not json"))

	_, ok := cache.Get(context.Background(), "broken")
	assert.False(t, ok)
	// The corrupt entry is evicted.
	assert.False(t, mr.Exists(cacheKey("broken")))
}
