package implementation

import (
	"context"
	"errors"
	"time"

	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/mapper"
	"query-workbench-be/internal/model"
	"query-workbench-be/internal/repository/contract"
	"query-workbench-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// parkedPosition is a temporary slot outside the valid position range. A cell
// being moved is parked here so the shift pass cannot collide with it.
const parkedPosition = -1

type CellRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CellMapper
}

func NewCellRepository(db *gorm.DB) contract.CellRepository {
	return &CellRepositoryImpl{
		db:     db,
		mapper: mapper.NewCellMapper(),
	}
}

func (r *CellRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CellRepositoryImpl) Create(ctx context.Context, cell *entity.Cell) error {
	m := r.mapper.ToModel(cell)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*cell = *r.mapper.ToEntity(m)
	return nil
}

func (r *CellRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Cell{}, id).Error
}

func (r *CellRepositoryImpl) DeleteByNotebookId(ctx context.Context, notebookId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("notebook_id = ?", notebookId).
		Delete(&model.Cell{}).Error
}

func (r *CellRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cell, error) {
	var m model.Cell
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CellRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cell, error) {
	var models []*model.Cell
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CellRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Cell{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CellRepositoryImpl) UpdateQuery(ctx context.Context, id uuid.UUID, query string, language entity.QueryLanguage) error {
	return r.db.WithContext(ctx).
		Model(&model.Cell{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sql":                     query,
			"selected_query_language": string(language),
		}).Error
}

func (r *CellRepositoryImpl) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	return r.db.WithContext(ctx).
		Model(&model.Cell{}).
		Where("id = ?", id).
		Update("position", position).Error
}

// ShiftPositionsFrom shifts positions >= from up by one in two passes. A single
// "position = position + 1" update can trip the unique constraint row-by-row,
// so affected rows first jump to a disjoint negative range and then land on
// their final value.
func (r *CellRepositoryImpl) ShiftPositionsFrom(ctx context.Context, notebookId uuid.UUID, from int) error {
	db := r.db.WithContext(ctx)

	err := db.Model(&model.Cell{}).
		Where("notebook_id = ? AND position >= ?", notebookId, from).
		Update("position", gorm.Expr("-(position + 2)")).Error
	if err != nil {
		return err
	}

	return db.Model(&model.Cell{}).
		Where("notebook_id = ? AND position < ?", notebookId, parkedPosition).
		Update("position", gorm.Expr("-position - 1")).Error
}

func (r *CellRepositoryImpl) ParkPosition(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Cell{}).
		Where("id = ?", id).
		Update("position", parkedPosition).Error
}

func (r *CellRepositoryImpl) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Cell{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"execution_status": string(entity.StatusRunning),
			"result_data":      nil,
			"result_error":     nil,
		}).Error
}

func (r *CellRepositoryImpl) CompleteRun(ctx context.Context, id uuid.UUID, status entity.ExecutionStatus, resultData []byte, resultError *string, lastRunAt time.Time, executionTime float64) error {
	fields := map[string]interface{}{
		"execution_status": string(status),
		"result_data":      nil,
		"result_error":     nil,
		"last_run_at":      lastRunAt,
		"execution_time":   executionTime,
	}
	if len(resultData) > 0 {
		fields["result_data"] = datatypes.JSON(resultData)
	}
	if resultError != nil {
		fields["result_error"] = *resultError
	}

	return r.db.WithContext(ctx).
		Model(&model.Cell{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *CellRepositoryImpl) ReconcileRunning(ctx context.Context, message string) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.Cell{}).
		Where("execution_status = ?", string(entity.StatusRunning)).
		Updates(map[string]interface{}{
			"execution_status": string(entity.StatusError),
			"result_data":      nil,
			"result_error":     message,
			"last_run_at":      now,
		})
	return res.RowsAffected, res.Error
}
