package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDatasetRequest struct {
	Name        string  `json:"name" validate:"required"`
	FileName    string  `json:"file_name" validate:"required"`
	Type        string  `json:"type" validate:"required"`
	Description *string `json:"description"`
	RowCount    int64   `json:"row_count" validate:"gte=0"`
	Size        int64   `json:"size" validate:"gte=0"`
}

type RegisterDatasetResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateDatasetRequest struct {
	Id          uuid.UUID
	Description *string `json:"description"`
}

type UpdateDatasetResponse struct {
	Id uuid.UUID `json:"id"`
}

type DatasetResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	FileName    string     `json:"file_name"`
	Type        string     `json:"type"`
	Description *string    `json:"description"`
	RowCount    int64      `json:"row_count"`
	Size        int64      `json:"size"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
