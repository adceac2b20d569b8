package mapper

import (
	"time"

	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/model"
)

type DatasetMapper struct{}

func NewDatasetMapper() *DatasetMapper {
	return &DatasetMapper{}
}

func (m *DatasetMapper) ToEntity(d *model.Dataset) *entity.Dataset {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Dataset{
		Id:          d.Id,
		Name:        d.Name,
		FileName:    d.FileName,
		Type:        d.Type,
		Description: d.Description,
		RowCount:    d.RowCount,
		Size:        d.Size,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DatasetMapper) ToModel(d *entity.Dataset) *model.Dataset {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Dataset{
		Id:          d.Id,
		Name:        d.Name,
		FileName:    d.FileName,
		Type:        d.Type,
		Description: d.Description,
		RowCount:    d.RowCount,
		Size:        d.Size,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DatasetMapper) ToEntities(datasets []*model.Dataset) []*entity.Dataset {
	entities := make([]*entity.Dataset, len(datasets))
	for i, d := range datasets {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
