package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CellResponse struct {
	Id            uuid.UUID       `json:"id"`
	NotebookId    uuid.UUID       `json:"notebook_id"`
	Query         string          `json:"query"`
	Language      string          `json:"language"`
	Status        string          `json:"status"`
	Position      int             `json:"position"`
	ResultData    json.RawMessage `json:"result_data,omitempty"`
	ResultError   *string         `json:"result_error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	LastRunAt     *time.Time      `json:"last_run_at,omitempty"`
	ExecutionTime *float64        `json:"execution_time,omitempty"`
}

type CreateCellRequest struct {
	NotebookId uuid.UUID `json:"notebook_id" validate:"required"`
	Query      string    `json:"query"`
	Language   string    `json:"language"`
	Position   int       `json:"position" validate:"gte=0"`
}

type CreateCellResponse struct {
	Id       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

type UpdateCellQueryRequest struct {
	Id       uuid.UUID
	Query    string `json:"query" validate:"required"`
	Language string `json:"language"`
}

type UpdateCellQueryResponse struct {
	Id uuid.UUID `json:"id"`
}

type MoveCellRequest struct {
	Id       uuid.UUID
	Position int `json:"position" validate:"gte=0"`
}

type MoveCellResponse struct {
	Id       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}
