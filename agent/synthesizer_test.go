package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/grovetools/scribe/config"
	"github.com/grovetools/scribe/logging"
	"github.com/grovetools/scribe/openrouter"
	"github.com/stretchr/testify/assert"
)

type fakeDescriber struct {
	reply string
	err   error
	calls int
	last  openrouter.Request
}

func (f *fakeDescriber) Describe(_ context.Context, req openrouter.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func newTestSynthesizer(delegate Describer) *Synthesizer {
	return NewSynthesizer(config.Default(), delegate, logging.NewLogger("synth-test"))
}

func TestSynthesizeWithDelegate(t *testing.T) {
	fake := &fakeDescriber{reply: "resolve login crash"}
	s := newTestSynthesizer(fake)

	syn := s.Synthesize(context.Background(), []string{"fix_login.py"}, "+# resolve the crash\n")

	assert.Equal(t, "fix", syn.Type.Name)
	assert.True(t, syn.Delegated)
	assert.Equal(t, "🐛 fix: resolve login crash", syn.Message)
	assert.Equal(t, "fix", fake.last.CommitType)
	assert.Equal(t, []string{"fix_login.py"}, fake.last.Files)
}

func TestSynthesizeDelegateFailureFallsBack(t *testing.T) {
	fake := &fakeDescriber{err: fmt.Errorf("boom")}
	s := newTestSynthesizer(fake)

	syn := s.Synthesize(context.Background(), []string{"fix_login.py"}, "+resolve bug\n")

	assert.False(t, syn.Delegated)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "🐛 fix: update fix_login.py", syn.Message, "fallback description still renders")
}

func TestSynthesizeWithoutDelegate(t *testing.T) {
	s := newTestSynthesizer(nil)

	syn := s.Synthesize(context.Background(),
		[]string{"src/auth/a.go", "src/auth/b.go"}, "+add new auth endpoint\n")

	assert.False(t, syn.Delegated)
	assert.Equal(t, "feat", syn.Type.Name)
	assert.Equal(t, "✨ feat(auth): update 2 files in auth", syn.Message)
}

func TestSynthesizeEmptyDelegateReplyFallsBack(t *testing.T) {
	fake := &fakeDescriber{reply: "  "}
	s := newTestSynthesizer(fake)

	syn := s.Synthesize(context.Background(), []string{"README.md"}, "")

	assert.False(t, syn.Delegated)
	assert.NotEmpty(t, syn.Message)
}
