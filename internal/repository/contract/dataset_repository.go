package contract

import (
	"context"

	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DatasetRepository interface {
	Create(ctx context.Context, dataset *entity.Dataset) error
	Update(ctx context.Context, dataset *entity.Dataset) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dataset, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Dataset, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
