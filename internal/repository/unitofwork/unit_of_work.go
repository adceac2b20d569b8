package unitofwork

import (
	"context"

	"query-workbench-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NotebookRepository() contract.NotebookRepository
	CellRepository() contract.CellRepository
	DatasetRepository() contract.DatasetRepository
}
