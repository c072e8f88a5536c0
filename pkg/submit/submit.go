package submit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/addressform/pkg/addressform"
)

// ErrNoBucket is returned when an S3 sink is configured without a bucket.
var ErrNoBucket = errors.New("submit: bucket is required")

// ErrNoDir is returned when a disk sink is configured without a directory.
var ErrNoDir = errors.New("submit: directory is required")

// Record is the stored form of one submission.
type Record struct {
	ID          string             `json:"id"`
	SubmittedAt time.Time          `json:"submitted_at"`
	Values      addressform.Values `json:"values"`
}

// newRecord stamps values with an ID and the current time.
func newRecord(v addressform.Values, now time.Time) Record {
	return Record{
		ID:          now.UTC().Format("20060102T150405Z") + "-" + randomSuffix(),
		SubmittedAt: now.UTC(),
		Values:      v,
	}
}

// randomSuffix returns 8 random hex characters.
func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b)
}

func encodeRecord(r Record) ([]byte, error) {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	return body, nil
}

// ----------------------------------------------------------------------------
// Log
// ----------------------------------------------------------------------------

// Log writes each submission to a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging sink. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Submit implements addressform.Submitter.
func (l *Log) Submit(ctx context.Context, v addressform.Values) error {
	l.logger.InfoContext(ctx, "data submitted",
		"name", v.Name,
		"email", v.Email,
		"area", v.Address.Area,
		"street", v.Address.Street,
		"pincode", v.Address.Pincode,
	)
	return nil
}

// ----------------------------------------------------------------------------
// Memory
// ----------------------------------------------------------------------------

// Memory keeps submissions in memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Submit implements addressform.Submitter.
func (m *Memory) Submit(ctx context.Context, v addressform.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, newRecord(v, m.now()))
	return nil
}

// Records returns a copy of the stored submissions, oldest first.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of stored submissions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
