package backfill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Franna88/medwave-sub001/internal/attribution"
)

// State is the driver's phase. A run only ever moves forward through the
// phases; FailedPartial is terminal and means some records were skipped
// after retry exhaustion while the rest were written.
type State string

const (
	StateNotStarted    State = "NOT_STARTED"
	StateFetching      State = "FETCHING"
	StateResolving     State = "RESOLVING"
	StateAggregating   State = "AGGREGATING"
	StateWriting       State = "WRITING"
	StateDone          State = "DONE"
	StateFailedPartial State = "FAILED_PARTIAL"
)

// Coverage is the per-run attribution and error report. Unattributed
// opportunities are a data point here, not an error.
type Coverage struct {
	Opportunities int                        `json:"opportunities"`
	Attributed    int                        `json:"attributed"`
	Unattributed  int                        `json:"unattributed"`
	ByMethod      map[attribution.Method]int `json:"byMethod"`
	SkippedNoTime int                        `json:"skippedNoTime"`
	ExcludedByAge int                        `json:"excludedByAge"`
	Errors        int                        `json:"errors"`
}

func newCoverage() Coverage {
	return Coverage{ByMethod: make(map[attribution.Method]int)}
}

// Checkpoint is the resumable snapshot of a backfill job, persisted as a
// JSON file keyed by the job id. Because every store write is an
// idempotent merge, resuming only needs to know which months completed;
// re-running a partially written month converges to the same documents.
type Checkpoint struct {
	JobID           string    `json:"jobId"`
	State           State     `json:"state"`
	DryRun          bool      `json:"dryRun"`
	StartedAt       time.Time `json:"startedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	CompletedMonths []string  `json:"completedMonths"`
	RecordsWritten  int       `json:"recordsWritten"`
	Coverage        Coverage  `json:"coverage"`
}

func (c *Checkpoint) monthDone(month string) bool {
	for _, m := range c.CompletedMonths {
		if m == month {
			return true
		}
	}
	return false
}

// Checkpoints reads and writes checkpoint files under a directory.
type Checkpoints struct {
	dir string
}

// NewCheckpoints creates the directory if needed.
func NewCheckpoints(dir string) (*Checkpoints, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint dir %s: %w", dir, err)
	}
	return &Checkpoints{dir: dir}, nil
}

func (c *Checkpoints) path(jobID string) string {
	return filepath.Join(c.dir, jobID+".json")
}

// Save writes the checkpoint atomically (temp file + rename) so an
// interrupt mid-write never leaves a truncated file behind.
func (c *Checkpoints) Save(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint %s: %w", cp.JobID, err)
	}

	tmp := c.path(cp.JobID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing checkpoint %s: %w", cp.JobID, err)
	}
	if err := os.Rename(tmp, c.path(cp.JobID)); err != nil {
		return fmt.Errorf("renaming checkpoint %s: %w", cp.JobID, err)
	}
	return nil
}

// Load reads a previously saved checkpoint.
func (c *Checkpoints) Load(jobID string) (*Checkpoint, error) {
	data, err := os.ReadFile(c.path(jobID))
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint %s: %w", jobID, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parsing checkpoint %s: %w", jobID, err)
	}
	if cp.Coverage.ByMethod == nil {
		cp.Coverage.ByMethod = make(map[attribution.Method]int)
	}
	return &cp, nil
}
