package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/pkg/logger"
	"query-workbench-be/internal/repository/memory"
	"query-workbench-be/internal/repository/specification"
	"query-workbench-be/internal/repository/unitofwork"
	"query-workbench-be/pkg/queryengine"

	"github.com/google/uuid"
)

type IExecutionService interface {
	// Run accepts a run request and returns once the cell is marked Running.
	// The execution itself happens on a background worker.
	Run(ctx context.Context, cellId uuid.UUID) (*dto.RunCellResponse, error)

	// Cancel aborts an in-flight run. The worker observes the cancellation and
	// writes the terminal Error state; Cancel itself only fires the signal.
	Cancel(ctx context.Context, cellId uuid.UUID) (*dto.CancelCellResponse, error)

	// Reconcile flips cells orphaned in Running by a previous process crash
	// into Error. Called once at startup before the server accepts traffic.
	Reconcile(ctx context.Context) (int64, error)
}

type executionService struct {
	uowFactory unitofwork.RepositoryFactory
	dispatcher *queryengine.Dispatcher
	runs       *memory.RunRegistry
	publisher  IPublisherService
	log        logger.ILogger
	timeout    time.Duration
}

func NewExecutionService(
	uowFactory unitofwork.RepositoryFactory,
	dispatcher *queryengine.Dispatcher,
	runs *memory.RunRegistry,
	publisher IPublisherService,
	log logger.ILogger,
	timeout time.Duration,
) IExecutionService {
	return &executionService{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		runs:       runs,
		publisher:  publisher,
		log:        log,
		timeout:    timeout,
	}
}

func (s *executionService) Run(ctx context.Context, cellId uuid.UUID) (*dto.RunCellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cell, err := uow.CellRepository().FindOne(ctx, specification.ByID{ID: cellId})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return nil, apperror.NotFound("cell %s not found", cellId)
	}

	if !cell.Status.CanTransition(entity.StatusRunning) {
		return nil, apperror.AlreadyRunning("cell %s is already running", cellId)
	}

	// The run context derives from Background, not the request context: the
	// worker must outlive the HTTP request that started it.
	runCtx, cancel := context.WithTimeout(context.Background(), s.timeout)

	if !s.runs.Acquire(cellId, cancel) {
		cancel()
		return nil, apperror.AlreadyRunning("cell %s is already running", cellId)
	}

	if err := uow.CellRepository().MarkRunning(ctx, cellId); err != nil {
		s.runs.Release(cellId)
		cancel()
		return nil, apperror.Storage(err, "failed to mark cell running")
	}

	s.publishEvent(ctx, &dto.CellRunEvent{
		CellId:     cell.Id,
		NotebookId: cell.NotebookId,
		Status:     string(entity.StatusRunning),
		OccurredAt: time.Now(),
	})

	// Snapshot query and language now. Edits that land while the run is in
	// flight apply to the next run, never to this one.
	go s.execute(runCtx, cancel, cell.Id, cell.NotebookId, string(cell.Language), cell.Query)

	return &dto.RunCellResponse{
		Id:     cellId,
		Status: string(entity.StatusRunning),
	}, nil
}

func (s *executionService) execute(ctx context.Context, cancel context.CancelFunc, cellId, notebookId uuid.UUID, language, query string) {
	defer cancel()

	started := time.Now()
	result, runErr := s.dispatcher.Dispatch(ctx, language, query)
	elapsed := time.Since(started).Seconds()

	status := entity.StatusSuccess
	var resultData []byte
	var resultError *string

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		status = entity.StatusError
		msg := "execution timed out"
		resultError = &msg
	case errors.Is(ctx.Err(), context.Canceled):
		status = entity.StatusError
		msg := "execution cancelled"
		resultError = &msg
	case runErr != nil:
		status = entity.StatusError
		msg := runErr.Error()
		resultError = &msg
	default:
		payload, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			status = entity.StatusError
			msg := "failed to encode result: " + marshalErr.Error()
			resultError = &msg
		} else {
			resultData = payload
		}
	}

	s.settle(cellId, notebookId, status, resultData, resultError, elapsed)
}

// settle writes the terminal state and releases the run slot. It uses a fresh
// context because the run context may already be expired or cancelled.
func (s *executionService) settle(cellId, notebookId uuid.UUID, status entity.ExecutionStatus, resultData []byte, resultError *string, elapsed float64) {
	defer s.runs.Release(cellId)

	writeCtx, cancelWrite := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelWrite()

	uow := s.uowFactory.NewUnitOfWork(writeCtx)

	// The cell or its notebook may have been deleted while the run was in
	// flight. Dropping the result is the correct outcome then.
	cell, err := uow.CellRepository().FindOne(writeCtx, specification.ByID{ID: cellId})
	if err != nil {
		s.log.Error("execution", "failed to reload cell after run", map[string]interface{}{
			"cell_id": cellId.String(),
			"error":   err.Error(),
		})
		return
	}
	if cell == nil {
		s.log.Info("execution", "cell deleted mid-run, discarding result", map[string]interface{}{
			"cell_id": cellId.String(),
		})
		return
	}

	finishedAt := time.Now()
	if err := uow.CellRepository().CompleteRun(writeCtx, cellId, status, resultData, resultError, finishedAt, elapsed); err != nil {
		s.log.Error("execution", "failed to persist run outcome", map[string]interface{}{
			"cell_id": cellId.String(),
			"status":  string(status),
			"error":   err.Error(),
		})
		return
	}

	s.publishEvent(writeCtx, &dto.CellRunEvent{
		CellId:        cellId,
		NotebookId:    notebookId,
		Status:        string(status),
		ResultError:   resultError,
		ExecutionTime: &elapsed,
		OccurredAt:    finishedAt,
	})
}

func (s *executionService) Cancel(ctx context.Context, cellId uuid.UUID) (*dto.CancelCellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cell, err := uow.CellRepository().FindOne(ctx, specification.ByID{ID: cellId})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return nil, apperror.NotFound("cell %s not found", cellId)
	}

	if !s.runs.Cancel(cellId) {
		return nil, apperror.Conflict("cell %s has no run in flight", cellId)
	}

	return &dto.CancelCellResponse{Id: cellId}, nil
}

func (s *executionService) Reconcile(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	affected, err := uow.CellRepository().ReconcileRunning(ctx, "run interrupted by server restart")
	if err != nil {
		return 0, apperror.Storage(err, "failed to reconcile orphaned runs")
	}
	if affected > 0 {
		s.log.Warn("execution", "reconciled orphaned runs", map[string]interface{}{
			"count": affected,
		})
	}
	return affected, nil
}

func (s *executionService) publishEvent(ctx context.Context, event *dto.CellRunEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("execution", "failed to encode run event", map[string]interface{}{
			"cell_id": event.CellId.String(),
			"error":   err.Error(),
		})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Error("execution", "failed to publish run event", map[string]interface{}{
			"cell_id": event.CellId.String(),
			"error":   err.Error(),
		})
	}
}
