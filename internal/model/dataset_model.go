package model

import (
	"time"

	"github.com/google/uuid"
)

type Dataset struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	FileName    string    `gorm:"type:varchar(512);not null"`
	Type        string    `gorm:"type:varchar(32);not null"`
	Description *string   `gorm:"type:text"`
	RowCount    int64     `gorm:"not null;default:0"`
	Size        int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Dataset) TableName() string {
	return "datasets"
}
