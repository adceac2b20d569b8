package dto

import (
	"time"

	"github.com/google/uuid"
)

type RunCellResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type CancelCellResponse struct {
	Id uuid.UUID `json:"id"`
}

// CellRunEvent is published on the run lifecycle topic when a run starts and
// when it settles, and forwarded to websocket subscribers.
type CellRunEvent struct {
	CellId        uuid.UUID `json:"cell_id"`
	NotebookId    uuid.UUID `json:"notebook_id"`
	Status        string    `json:"status"`
	ResultError   *string   `json:"result_error,omitempty"`
	ExecutionTime *float64  `json:"execution_time,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
