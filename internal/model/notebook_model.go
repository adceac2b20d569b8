package model

import (
	"time"

	"github.com/google/uuid"
)

type Notebook struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	// Owned cells; deleting a notebook cascades to them at the schema level.
	Cells []Cell `gorm:"foreignKey:NotebookId;constraint:OnDelete:CASCADE"`
}

func (Notebook) TableName() string {
	return "notebooks"
}
