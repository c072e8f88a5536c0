package submit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vango-dev/addressform/pkg/addressform"
)

// Disk writes each submission as a JSON file in a directory.
type Disk struct {
	dir string
	now func() time.Time
}

// NewDisk creates a disk sink, creating dir if needed.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, ErrNoDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create submission dir: %w", err)
	}
	return &Disk{dir: dir, now: time.Now}, nil
}

// Submit implements addressform.Submitter. The file is written to a
// temporary name first and renamed, so readers never see partial records.
func (d *Disk) Submit(ctx context.Context, v addressform.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := newRecord(v, d.now())
	body, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	final := filepath.Join(d.dir, rec.ID+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}
