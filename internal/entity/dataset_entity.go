package entity

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is a registered queryable source. Cells reference datasets by name
// inside their query text, never by foreign key, so a dataset can disappear
// while cells still mention it; resolution happens at execution time.
type Dataset struct {
	Id          uuid.UUID
	Name        string
	FileName    string
	Type        string
	Description *string
	RowCount    int64
	Size        int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
