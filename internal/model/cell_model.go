package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Cell struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NotebookId uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_cells_notebook_position,priority:1"`
	// Column keeps the historical name "sql" even though the text may be
	// GraphQL or natural language, selected by SelectedQueryLanguage.
	Sql                   string         `gorm:"column:sql;type:text;not null"`
	ExecutionStatus       string         `gorm:"type:varchar(16);not null;default:'NotRun'"`
	Position              int            `gorm:"not null;uniqueIndex:idx_cells_notebook_position,priority:2"`
	SelectedQueryLanguage string         `gorm:"type:varchar(32);not null;default:'SQL'"`
	ResultData            datatypes.JSON `gorm:"type:jsonb"`
	ResultError           *string        `gorm:"type:text"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	LastRunAt             *time.Time
	ExecutionTime         *float64 `gorm:"type:double precision"`
}

func (Cell) TableName() string {
	return "cells"
}
