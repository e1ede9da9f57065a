package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
	"github.com/marcosvillarreal/reelstack-backend/pkg/logger"
	"github.com/marcosvillarreal/reelstack-backend/pkg/metrics"
)

// SubmitParams carries operation-specific options from the request body.
type SubmitParams struct {
	FilterType string `json:"filter_type,omitempty"`
}

// SubmitInput is a batch request after JSON decoding.
type SubmitInput struct {
	AssetIDs  []uuid.UUID  `json:"asset_ids"`
	Operation string       `json:"operation"`
	Params    SubmitParams `json:"params"`
}

// SubmitResult is returned to the caller as soon as the job is registered.
type SubmitResult struct {
	JobID       uuid.UUID         `json:"job_id"`
	Status      enums.BatchStatus `json:"status"`
	TotalAssets int               `json:"total_assets"`
	Message     string            `json:"message,omitempty"`
}

// Dispatcher validates batch requests, registers jobs and fans tasks out to
// the executor. Submit returns before any task runs; callers poll the
// registry for progress.
type Dispatcher struct {
	registry *Registry
	executor *Executor
	metrics  *metrics.BatchMetrics
	logg     *logger.Logger

	maxConcurrency int
	taskTimeout    time.Duration
}

// DispatcherParams bundles the dispatcher dependencies.
type DispatcherParams struct {
	Registry *Registry
	Executor *Executor
	Metrics  *metrics.BatchMetrics
	Logger   *logger.Logger
	Config   config.BatchConfig
}

// NewDispatcher constructs a batch dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Registry == nil {
		return nil, fmt.Errorf("job registry is required")
	}
	if params.Executor == nil {
		return nil, fmt.Errorf("task executor is required")
	}

	maxConcurrency := params.Config.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	taskTimeout := params.Config.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = 60 * time.Second
	}
	return &Dispatcher{
		registry:       params.Registry,
		executor:       params.Executor,
		metrics:        params.Metrics,
		logg:           params.Logger,
		maxConcurrency: maxConcurrency,
		taskTimeout:    taskTimeout,
	}, nil
}

// Submit validates the request, registers a job and returns its id. For
// analyze and filter the tasks run on a background goroutine; resize and
// thumbnail jobs are finalized failed on the spot.
func (d *Dispatcher) Submit(ctx context.Context, ownerID uuid.UUID, input SubmitInput) (SubmitResult, error) {
	operation, err := enums.ParseBatchOperation(input.Operation)
	if err != nil {
		return SubmitResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown operation %q", input.Operation))
	}
	if len(input.AssetIDs) == 0 {
		return SubmitResult{}, pkgerrors.New(pkgerrors.CodeValidation, "asset_ids is required")
	}
	assetIDs := dedupe(input.AssetIDs)

	kind := enums.FilterKindGrayscale
	if operation == enums.BatchOperationFilter && input.Params.FilterType != "" {
		kind, err = enums.ParseFilterKind(input.Params.FilterType)
		if err != nil {
			return SubmitResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown filter %q", input.Params.FilterType))
		}
	}

	jobID := d.registry.Create(ownerID, operation, len(assetIDs))

	switch operation {
	case enums.BatchOperationResize, enums.BatchOperationThumbnail:
		message := fmt.Sprintf("operation %s not yet implemented", operation)
		d.registry.FailValidation(jobID, assetIDs, message)
		d.metrics.IncJob(operation.String(), enums.BatchStatusFailed.String())
		return SubmitResult{
			JobID:       jobID,
			Status:      enums.BatchStatusFailed,
			TotalAssets: len(assetIDs),
			Message:     message,
		}, nil
	}

	go d.run(context.WithoutCancel(ctx), jobID, ownerID, operation, assetIDs, kind)

	return SubmitResult{
		JobID:       jobID,
		Status:      enums.BatchStatusQueued,
		TotalAssets: len(assetIDs),
	}, nil
}

func (d *Dispatcher) run(ctx context.Context, jobID, ownerID uuid.UUID, operation enums.BatchOperation, assetIDs []uuid.UUID, kind enums.FilterKind) {
	start := time.Now()
	if d.logg != nil {
		ctx = d.logg.WithJobID(ctx, jobID.String())
	}
	d.registry.MarkProcessing(jobID)

	var g errgroup.Group
	g.SetLimit(d.maxConcurrency)
	for _, assetID := range assetIDs {
		assetID := assetID
		g.Go(func() error {
			d.runTask(ctx, jobID, ownerID, operation, assetID, kind)
			return nil
		})
	}
	g.Wait()

	status := d.registry.Finalize(jobID)
	d.metrics.IncJob(operation.String(), status.String())
	d.metrics.ObserveJobDuration(operation.String(), time.Since(start))
	if d.logg != nil {
		d.logg.Info(d.logg.WithField(ctx, "status", status.String()), "batch job finished")
	}
}

// runTask executes one asset under its own deadline and reports exactly one
// outcome, even when the executor panics.
func (d *Dispatcher) runTask(ctx context.Context, jobID, ownerID uuid.UUID, operation enums.BatchOperation, assetID uuid.UUID, kind enums.FilterKind) {
	taskCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panic: %v", r)
			}
		}()
		switch operation {
		case enums.BatchOperationAnalyze:
			return d.executor.Analyze(taskCtx, ownerID, assetID)
		case enums.BatchOperationFilter:
			return d.executor.Filter(taskCtx, ownerID, assetID, kind)
		default:
			return fmt.Errorf("operation %s has no executor", operation)
		}
	}()

	if err != nil {
		d.registry.RecordFailure(jobID, assetID)
		d.metrics.IncTaskFailure(operation.String())
		if d.logg != nil {
			d.logg.Error(d.logg.WithAssetID(ctx, assetID.String()), "batch task failed", err)
		}
		return
	}
	d.registry.RecordSuccess(jobID)
	d.metrics.IncTaskSuccess(operation.String())
}

// dedupe drops repeated asset ids while preserving first-seen order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
