package contract

import (
	"context"
	"time"

	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CellRepository interface {
	Create(ctx context.Context, cell *entity.Cell) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNotebookId(ctx context.Context, notebookId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cell, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cell, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateQuery rewrites query text and language only. Execution fields are
	// untouched so an in-flight run cannot be mutated mid-flight.
	UpdateQuery(ctx context.Context, id uuid.UUID, query string, language entity.QueryLanguage) error

	// UpdatePosition places one cell at a new position.
	UpdatePosition(ctx context.Context, id uuid.UUID, position int) error

	// ShiftPositionsFrom shifts every cell of the notebook at position >= from
	// up by one, without transiently violating the (notebook_id, position)
	// unique constraint. Must run inside a transaction.
	ShiftPositionsFrom(ctx context.Context, notebookId uuid.UUID, from int) error

	// ParkPosition moves a cell to a temporary negative position so it does
	// not collide while its siblings are resequenced.
	ParkPosition(ctx context.Context, id uuid.UUID) error

	// MarkRunning transitions the cell into Running and clears any prior
	// result or error payload.
	MarkRunning(ctx context.Context, id uuid.UUID) error

	// CompleteRun writes the terminal state of a run in a single update:
	// status, result XOR error, last_run_at and execution_time.
	CompleteRun(ctx context.Context, id uuid.UUID, status entity.ExecutionStatus, resultData []byte, resultError *string, lastRunAt time.Time, executionTime float64) error

	// ReconcileRunning flips every Running cell to Error with the given
	// message. Used by the startup sweep for runs orphaned by a crash.
	ReconcileRunning(ctx context.Context, message string) (int64, error)
}
