package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/scribe/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	return NewJournal(path, logging.NewLogger("metrics-test")), path
}

func TestAppendAndRead(t *testing.T) {
	j, _ := newTestJournal(t)

	j.Append(Record{CommitType: "feat", Message: "✨ feat: add thing", FilesCount: 2, Delegated: true})
	j.Append(Record{CommitType: "fix", Message: "🐛 fix: squash bug", FilesCount: 1})

	records, err := j.Read()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "feat", records[0].CommitType)
	assert.False(t, records[0].Timestamp.IsZero(), "timestamp filled on append")
	assert.Equal(t, "fix", records[1].CommitType)
}

func TestReadMissingJournal(t *testing.T) {
	j, _ := newTestJournal(t)

	records, err := j.Read()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadSkipsCorruptLines(t *testing.T) {
	j, path := newTestJournal(t)
	j.Append(Record{CommitType: "chore"})

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{broken\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	j.Append(Record{CommitType: "docs"})

	records, err := j.Read()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestComputeStats(t *testing.T) {
	j, _ := newTestJournal(t)
	j.Append(Record{CommitType: "feat", Delegated: true})
	j.Append(Record{CommitType: "feat"})
	j.Append(Record{CommitType: "fix", Delegated: true})
	j.Append(Record{CommitType: "chore"})

	stats, err := j.ComputeStats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalCommits)
	assert.Equal(t, 2, stats.ByType["feat"])
	assert.Equal(t, 1, stats.ByType["fix"])
	assert.InDelta(t, 0.5, stats.DelegatedRate, 1e-9)
}

func TestStatsEmptyJournal(t *testing.T) {
	j, _ := newTestJournal(t)

	stats, err := j.ComputeStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCommits)
	assert.Zero(t, stats.DelegatedRate)
}
