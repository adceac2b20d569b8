package mapper

import (
	"encoding/json"

	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/model"

	"gorm.io/datatypes"
)

type CellMapper struct{}

func NewCellMapper() *CellMapper {
	return &CellMapper{}
}

func (m *CellMapper) ToEntity(c *model.Cell) *entity.Cell {
	if c == nil {
		return nil
	}

	var result json.RawMessage
	if len(c.ResultData) > 0 {
		result = json.RawMessage(c.ResultData)
	}

	return &entity.Cell{
		Id:            c.Id,
		NotebookId:    c.NotebookId,
		Query:         c.Sql,
		Language:      entity.QueryLanguage(c.SelectedQueryLanguage),
		Status:        entity.ExecutionStatus(c.ExecutionStatus),
		Position:      c.Position,
		ResultData:    result,
		ResultError:   c.ResultError,
		CreatedAt:     c.CreatedAt,
		LastRunAt:     c.LastRunAt,
		ExecutionTime: c.ExecutionTime,
	}
}

func (m *CellMapper) ToModel(c *entity.Cell) *model.Cell {
	if c == nil {
		return nil
	}

	var result datatypes.JSON
	if len(c.ResultData) > 0 {
		result = datatypes.JSON(c.ResultData)
	}

	return &model.Cell{
		Id:                    c.Id,
		NotebookId:            c.NotebookId,
		Sql:                   c.Query,
		ExecutionStatus:       string(c.Status),
		Position:              c.Position,
		SelectedQueryLanguage: string(c.Language),
		ResultData:            result,
		ResultError:           c.ResultError,
		CreatedAt:             c.CreatedAt,
		LastRunAt:             c.LastRunAt,
		ExecutionTime:         c.ExecutionTime,
	}
}

func (m *CellMapper) ToEntities(cells []*model.Cell) []*entity.Cell {
	entities := make([]*entity.Cell, len(cells))
	for i, c := range cells {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
