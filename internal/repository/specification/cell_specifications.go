package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByNotebookID struct {
	NotebookID uuid.UUID
}

func (s ByNotebookID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notebook_id = ?", s.NotebookID)
}

type ByNotebookIDs struct {
	NotebookIDs []uuid.UUID
}

func (s ByNotebookIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notebook_id IN ?", s.NotebookIDs)
}

type ByPosition struct {
	Position int
}

func (s ByPosition) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("position = ?", s.Position)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("execution_status = ?", s.Status)
}

// OrderByPosition keeps cell listings in notebook order.
type OrderByPosition struct{}

func (s OrderByPosition) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
