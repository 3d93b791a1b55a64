package metrics

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// FileName is the journal's location relative to the repository root.
const FileName = ".commit_metrics.jsonl"

// Record is one committed changeset, appended as a single JSON line.
type Record struct {
	Timestamp      time.Time `json:"timestamp"`
	CommitType     string    `json:"commit_type"`
	Message        string    `json:"message"`
	MessageLength  int       `json:"message_length"`
	FilesCount     int       `json:"files_count"`
	ModelUsed      string    `json:"model_used,omitempty"`
	GenerationTime float64   `json:"generation_time_seconds"`
	Delegated      bool      `json:"delegated"`
	DryRun         bool      `json:"dry_run,omitempty"`
}

// Stats aggregates a journal.
type Stats struct {
	TotalCommits  int            `json:"total_commits"`
	ByType        map[string]int `json:"by_type"`
	DelegatedRate float64        `json:"delegated_rate"`
}

// Journal appends commit records to a JSONL file. Append failures are logged
// and swallowed: metrics never block a commit.
type Journal struct {
	path   string
	logger *logrus.Entry
}

func NewJournal(path string, logger *logrus.Entry) *Journal {
	return &Journal{path: path, logger: logger}
}

// Append writes one record as a JSON line.
func (j *Journal) Append(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		j.logger.WithError(err).Warn("Could not encode metrics record")
		return
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		j.logger.WithError(err).Warn("Could not open metrics journal")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		j.logger.WithError(err).Warn("Could not append metrics record")
	}
}

// Read returns every parseable record in the journal. Corrupt lines are
// skipped; a missing journal is an empty one.
func (j *Journal) Read() ([]Record, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			j.logger.WithError(err).Debug("Skipping corrupt metrics line")
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// ComputeStats summarizes the journal.
func (j *Journal) ComputeStats() (Stats, error) {
	records, err := j.Read()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{ByType: make(map[string]int)}
	delegated := 0
	for _, rec := range records {
		stats.TotalCommits++
		stats.ByType[rec.CommitType]++
		if rec.Delegated {
			delegated++
		}
	}
	if stats.TotalCommits > 0 {
		stats.DelegatedRate = float64(delegated) / float64(stats.TotalCommits)
	}
	return stats, nil
}
