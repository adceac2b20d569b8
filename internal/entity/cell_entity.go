package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cell is a single query unit inside a notebook. Position is unique within
// the owning notebook; ResultData and ResultError are mutually exclusive.
type Cell struct {
	Id            uuid.UUID
	NotebookId    uuid.UUID
	Query         string
	Language      QueryLanguage
	Status        ExecutionStatus
	Position      int
	ResultData    json.RawMessage
	ResultError   *string
	CreatedAt     time.Time
	LastRunAt     *time.Time
	ExecutionTime *float64
}
