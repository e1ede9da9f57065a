package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
)

// Snapshot is a point-in-time view of one batch job. Snapshots hand out
// copies only; callers never see registry internals.
type Snapshot struct {
	JobID       uuid.UUID            `json:"job_id"`
	Operation   enums.BatchOperation `json:"operation"`
	Status      enums.BatchStatus    `json:"status"`
	TotalAssets int                  `json:"total_assets"`
	Processed   int                  `json:"processed"`
	FailedIDs   []uuid.UUID          `json:"failed_ids"`
	Message     string               `json:"message,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	FinishedAt  *time.Time           `json:"finished_at,omitempty"`
}

type job struct {
	ownerID    uuid.UUID
	operation  enums.BatchOperation
	status     enums.BatchStatus
	total      int
	processed  int
	failedIDs  []uuid.UUID
	message    string
	createdAt  time.Time
	finishedAt *time.Time
}

// Registry tracks batch jobs for the lifetime of the process. All state is
// in memory; a restart loses job history. Every mutation holds the registry
// mutex, so counter updates are atomic relative to each other and a task
// outcome is recorded exactly once.
type Registry struct {
	mu    sync.Mutex
	jobs  map[uuid.UUID]*job
	order []uuid.UUID
	now   func() time.Time
}

// NewRegistry builds an empty job registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[uuid.UUID]*job),
		now:  time.Now,
	}
}

// Create registers a queued job and returns its id.
func (r *Registry) Create(ownerID uuid.UUID, operation enums.BatchOperation, totalAssets int) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	r.jobs[id] = &job{
		ownerID:   ownerID,
		operation: operation,
		status:    enums.BatchStatusQueued,
		total:     totalAssets,
		createdAt: r.now(),
	}
	r.order = append(r.order, id)
	return id
}

// MarkProcessing moves a queued job to processing. Terminal jobs are left
// untouched.
func (r *Registry) MarkProcessing(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok || j.status.IsTerminal() {
		return
	}
	j.status = enums.BatchStatusProcessing
}

// RecordSuccess counts one successfully processed asset.
func (r *Registry) RecordSuccess(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok || j.status.IsTerminal() {
		return
	}
	j.processed++
}

// RecordFailure records one failed asset.
func (r *Registry) RecordFailure(jobID, assetID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok || j.status.IsTerminal() {
		return
	}
	j.failedIDs = append(j.failedIDs, assetID)
}

// FailValidation moves a job to terminal failed before any task runs. Every
// submitted asset id is recorded as failed so processed + |failed| still
// accounts for the whole batch.
func (r *Registry) FailValidation(jobID uuid.UUID, assetIDs []uuid.UUID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok || j.status.IsTerminal() {
		return
	}
	j.failedIDs = append([]uuid.UUID(nil), assetIDs...)
	j.message = message
	j.status = enums.BatchStatusFailed
	now := r.now()
	j.finishedAt = &now
}

// Finalize settles a job once every task has reported: no failures means
// completed, nothing processed means failed, anything else is partial.
func (r *Registry) Finalize(jobID uuid.UUID) enums.BatchStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok {
		return ""
	}
	if j.status.IsTerminal() {
		return j.status
	}

	switch {
	case len(j.failedIDs) == 0:
		j.status = enums.BatchStatusCompleted
	case j.processed == 0:
		j.status = enums.BatchStatusFailed
	default:
		j.status = enums.BatchStatusPartial
	}
	now := r.now()
	j.finishedAt = &now
	return j.status
}

// Get returns a snapshot of the job. Unknown ids and jobs owned by another
// account both surface CodeNotFound.
func (r *Registry) Get(ownerID, jobID uuid.UUID) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok || j.ownerID != ownerID {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "batch job not found")
	}
	return j.snapshot(jobID), nil
}

// List returns the owner's jobs in creation order.
func (r *Registry) List(ownerID uuid.UUID) []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0)
	for _, id := range r.order {
		j := r.jobs[id]
		if j.ownerID != ownerID {
			continue
		}
		out = append(out, j.snapshot(id))
	}
	return out
}

func (j *job) snapshot(id uuid.UUID) Snapshot {
	snap := Snapshot{
		JobID:       id,
		Operation:   j.operation,
		Status:      j.status,
		TotalAssets: j.total,
		Processed:   j.processed,
		FailedIDs:   append([]uuid.UUID(nil), j.failedIDs...),
		Message:     j.message,
		CreatedAt:   j.createdAt,
	}
	if j.finishedAt != nil {
		finished := *j.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}
