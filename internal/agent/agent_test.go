package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quorum/internal/gateway/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	id       string
	reply    string
	err      error
	disabled bool
	calls    int
}

func (f *fakeProvider) ID() string    { return f.id }
func (f *fakeProvider) Enabled() bool { return !f.disabled }
func (f *fakeProvider) Call(_ context.Context, _ provider.ChatPayload) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestRegistryDuplicateAndEmptyID(t *testing.T) {
	a := NewExpert("a1", "", &fakeProvider{id: "p"}, 0)
	b := NewExpert("a1", "", &fakeProvider{id: "p"}, 0)
	_, err := NewRegistry(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = NewRegistry(NewExpert("", "", &fakeProvider{id: "p"}, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestRegistryOrderAndLookup(t *testing.T) {
	b := NewExpert("b", "", &fakeProvider{id: "p"}, 0)
	a := NewExpert("a", "", &fakeProvider{id: "p"}, 0)
	r, err := NewRegistry(b, a)
	require.NoError(t, err)

	got, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID())

	// List 保持注册顺序，IDs 排序
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID())
	assert.Equal(t, []string{"a", "b"}, r.IDs())
}

func TestExpertAnalyze(t *testing.T) {
	p := &fakeProvider{id: "p", reply: "  market looks bullish  "}
	e := NewExpert("a1", "Analyst One", p, time.Second)

	out, err := e.Analyze(context.Background(), Input{System: "sys", User: "user"})
	require.NoError(t, err)
	assert.Equal(t, "market looks bullish", out)
	assert.Equal(t, "Analyst One", e.Name())
}

func TestExpertEmptyResponseIsError(t *testing.T) {
	e := NewExpert("a1", "", &fakeProvider{id: "p", reply: "   "}, time.Second)
	_, err := e.Analyze(context.Background(), Input{User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestExpertDisabledProvider(t *testing.T) {
	e := NewExpert("a1", "", &fakeProvider{id: "p", disabled: true}, time.Second)
	_, err := e.Analyze(context.Background(), Input{User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no enabled provider")
}

func TestExpertBreakerOpensAfterFailures(t *testing.T) {
	p := &fakeProvider{id: "p", err: errors.New("boom")}
	e := NewExpert("a1", "", p, time.Second)

	for i := 0; i < 3; i++ {
		_, err := e.Analyze(context.Background(), Input{User: "u"})
		require.Error(t, err)
	}
	// 熔断打开后不再打到后端
	calls := p.calls
	_, err := e.Analyze(context.Background(), Input{User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "breaker open")
	assert.Equal(t, calls, p.calls)
}

func TestExpertTruncatesLongOutput(t *testing.T) {
	p := &fakeProvider{id: "p", reply: strings.Repeat("多", maxOutputRunes+100)}
	e := NewExpert("a1", "", p, time.Second)
	out, err := e.Analyze(context.Background(), Input{User: "u"})
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(out)), maxOutputRunes+1)
}
