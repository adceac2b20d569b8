package service

import (
	"context"
	"strings"
	"time"

	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/memory"
	"query-workbench-be/internal/repository/specification"
	"query-workbench-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ICellService interface {
	Create(ctx context.Context, req *dto.CreateCellRequest) (*dto.CreateCellResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.CellResponse, error)
	UpdateQuery(ctx context.Context, req *dto.UpdateCellQueryRequest) (*dto.UpdateCellQueryResponse, error)
	Move(ctx context.Context, req *dto.MoveCellRequest) (*dto.MoveCellResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type cellService struct {
	uowFactory unitofwork.RepositoryFactory
	locks      *memory.NotebookLocks
}

func NewCellService(uowFactory unitofwork.RepositoryFactory, locks *memory.NotebookLocks) ICellService {
	return &cellService{
		uowFactory: uowFactory,
		locks:      locks,
	}
}

func toCellResponse(cell *entity.Cell) *dto.CellResponse {
	return &dto.CellResponse{
		Id:            cell.Id,
		NotebookId:    cell.NotebookId,
		Query:         cell.Query,
		Language:      string(cell.Language),
		Status:        string(cell.Status),
		Position:      cell.Position,
		ResultData:    cell.ResultData,
		ResultError:   cell.ResultError,
		CreatedAt:     cell.CreatedAt,
		LastRunAt:     cell.LastRunAt,
		ExecutionTime: cell.ExecutionTime,
	}
}

func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// Create inserts a cell at the requested position. Cells already sitting at
// that position or later are shifted up by one, so an insert in the middle of
// a notebook behaves like inserting into a list, not like a swap. A position
// beyond the last cell is taken as-is; ordering, not density, is the contract,
// so the resulting gap is fine.
func (s *cellService) Create(ctx context.Context, req *dto.CreateCellRequest) (*dto.CreateCellResponse, error) {
	language := entity.QueryLanguage(req.Language)
	if req.Language == "" {
		language = entity.LanguageSQL
	}
	if !language.IsValid() {
		return nil, apperror.Validation("unknown query language %q", req.Language)
	}
	// The negative range is reserved for in-flight resequencing.
	if req.Position < 0 {
		return nil, apperror.Validation("position must not be negative")
	}
	position := req.Position

	s.locks.Lock(req.NotebookId)
	defer s.locks.Unlock(req.NotebookId)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: req.NotebookId})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load notebook")
	}
	if notebook == nil {
		return nil, apperror.NotFound("notebook %s not found", req.NotebookId)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage(err, "failed to start transaction")
	}
	defer uow.Rollback()

	occupied, err := uow.CellRepository().FindOne(ctx,
		specification.ByNotebookID{NotebookID: req.NotebookId},
		specification.ByPosition{Position: position},
	)
	if err != nil {
		return nil, apperror.Storage(err, "failed to check position")
	}
	if occupied != nil {
		if err := uow.CellRepository().ShiftPositionsFrom(ctx, req.NotebookId, position); err != nil {
			return nil, apperror.Storage(err, "failed to shift cells")
		}
	}

	cell := entity.Cell{
		Id:         uuid.New(),
		NotebookId: req.NotebookId,
		Query:      req.Query,
		Language:   language,
		Status:     entity.StatusNotRun,
		Position:   position,
		CreatedAt:  time.Now(),
	}
	if err := uow.CellRepository().Create(ctx, &cell); err != nil {
		if isDuplicateKey(err) {
			return nil, apperror.Conflict("position %d is already taken", position)
		}
		return nil, apperror.Storage(err, "failed to create cell")
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage(err, "failed to commit cell insert")
	}

	return &dto.CreateCellResponse{
		Id:       cell.Id,
		Position: cell.Position,
	}, nil
}

func (s *cellService) Show(ctx context.Context, id uuid.UUID) (*dto.CellResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cell, err := uow.CellRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return nil, apperror.NotFound("cell %s not found", id)
	}

	return toCellResponse(cell), nil
}

// UpdateQuery rewrites the query text and language only. Execution state,
// results and position are never touched here, so editing a cell while a run
// is in flight cannot corrupt the run's outcome.
func (s *cellService) UpdateQuery(ctx context.Context, req *dto.UpdateCellQueryRequest) (*dto.UpdateCellQueryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cell, err := uow.CellRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return nil, apperror.NotFound("cell %s not found", req.Id)
	}

	language := cell.Language
	if req.Language != "" {
		language = entity.QueryLanguage(req.Language)
		if !language.IsValid() {
			return nil, apperror.Validation("unknown query language %q", req.Language)
		}
	}

	if err := uow.CellRepository().UpdateQuery(ctx, req.Id, req.Query, language); err != nil {
		return nil, apperror.Storage(err, "failed to update cell query")
	}

	return &dto.UpdateCellQueryResponse{Id: req.Id}, nil
}

// Move relocates a cell to a new position. When the target is occupied the
// cells between the old and new position shift by one toward the vacated
// slot; when it is free the cell simply lands there. Positions outside the
// current range are taken as-is, the same way Create treats them.
func (s *cellService) Move(ctx context.Context, req *dto.MoveCellRequest) (*dto.MoveCellResponse, error) {
	if req.Position < 0 {
		return nil, apperror.Validation("position must not be negative")
	}
	position := req.Position

	uow := s.uowFactory.NewUnitOfWork(ctx)

	cell, err := uow.CellRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return nil, apperror.NotFound("cell %s not found", req.Id)
	}

	s.locks.Lock(cell.NotebookId)
	defer s.locks.Unlock(cell.NotebookId)

	// The first read happened outside the lock; a move or delete that held the
	// lock first may have changed the baseline. Reload before deciding.
	cell, err = uow.CellRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return nil, apperror.NotFound("cell %s not found", req.Id)
	}

	if cell.Position == position {
		return &dto.MoveCellResponse{Id: cell.Id, Position: cell.Position}, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage(err, "failed to start transaction")
	}
	defer uow.Rollback()

	occupant, err := uow.CellRepository().FindOne(ctx,
		specification.ByNotebookID{NotebookID: cell.NotebookId},
		specification.ByPosition{Position: position},
	)
	if err != nil {
		return nil, apperror.Storage(err, "failed to check position")
	}

	if occupant == nil {
		if err := uow.CellRepository().UpdatePosition(ctx, cell.Id, position); err != nil {
			if isDuplicateKey(err) {
				return nil, apperror.Conflict("position %d is already taken", position)
			}
			return nil, apperror.Storage(err, "failed to place cell")
		}
		if err := uow.Commit(); err != nil {
			return nil, apperror.Storage(err, "failed to commit cell move")
		}
		return &dto.MoveCellResponse{Id: cell.Id, Position: position}, nil
	}

	if err := uow.CellRepository().ParkPosition(ctx, cell.Id); err != nil {
		return nil, apperror.Storage(err, "failed to park cell")
	}

	// Shift the intervening cells by one toward the slot the cell vacated.
	// The rewrite runs in two passes through a disjoint negative range so the
	// unique (notebook_id, position) constraint never trips mid-shuffle.
	siblings, err := uow.CellRepository().FindAll(ctx,
		specification.ByNotebookID{NotebookID: cell.NotebookId},
		specification.OrderByPosition{},
	)
	if err != nil {
		return nil, apperror.Storage(err, "failed to load siblings")
	}

	moved := make(map[uuid.UUID]int)
	for _, sibling := range siblings {
		if sibling.Id == cell.Id {
			continue
		}
		p := sibling.Position
		switch {
		case position < cell.Position && p >= position && p < cell.Position:
			moved[sibling.Id] = p + 1
		case position > cell.Position && p > cell.Position && p <= position:
			moved[sibling.Id] = p - 1
		}
	}

	for id := range moved {
		if err := uow.CellRepository().UpdatePosition(ctx, id, -(moved[id] + 2)); err != nil {
			return nil, apperror.Storage(err, "failed to resequence cells")
		}
	}
	for id, final := range moved {
		if err := uow.CellRepository().UpdatePosition(ctx, id, final); err != nil {
			return nil, apperror.Storage(err, "failed to resequence cells")
		}
	}

	if err := uow.CellRepository().UpdatePosition(ctx, cell.Id, position); err != nil {
		if isDuplicateKey(err) {
			return nil, apperror.Conflict("position %d is already taken", position)
		}
		return nil, apperror.Storage(err, "failed to place cell")
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage(err, "failed to commit cell move")
	}

	return &dto.MoveCellResponse{Id: cell.Id, Position: position}, nil
}

// Delete removes the cell and nothing else. Surviving siblings keep their
// positions; ordering, not density, is the contract, so the gap stays.
func (s *cellService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cell, err := uow.CellRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Storage(err, "failed to load cell")
	}
	if cell == nil {
		return apperror.NotFound("cell %s not found", id)
	}

	s.locks.Lock(cell.NotebookId)
	defer s.locks.Unlock(cell.NotebookId)

	if err := uow.CellRepository().Delete(ctx, id); err != nil {
		return apperror.Storage(err, "failed to delete cell")
	}
	return nil
}
