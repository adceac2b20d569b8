package service

import (
	"context"
	"time"

	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/specification"
	"query-workbench-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INotebookService interface {
	GetAll(ctx context.Context) ([]*dto.GetAllNotebookResponse, error)
	Create(ctx context.Context, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowNotebookResponse, error)
	Update(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type notebookService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewNotebookService(uowFactory unitofwork.RepositoryFactory) INotebookService {
	return &notebookService{
		uowFactory: uowFactory,
	}
}

func (s *notebookService) GetAll(ctx context.Context) ([]*dto.GetAllNotebookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notebooks, err := uow.NotebookRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, apperror.Storage(err, "failed to list notebooks")
	}

	result := make([]*dto.GetAllNotebookResponse, 0, len(notebooks))
	ids := make([]uuid.UUID, 0, len(notebooks))
	for _, notebook := range notebooks {
		result = append(result, &dto.GetAllNotebookResponse{
			Id:          notebook.Id,
			Name:        notebook.Name,
			Description: notebook.Description,
			CreatedAt:   notebook.CreatedAt,
			UpdatedAt:   notebook.UpdatedAt,
			Cells:       make([]*dto.CellResponse, 0),
		})
		ids = append(ids, notebook.Id)
	}

	if len(ids) == 0 {
		return result, nil
	}

	cells, err := uow.CellRepository().FindAll(ctx,
		specification.ByNotebookIDs{NotebookIDs: ids},
		specification.OrderByPosition{},
	)
	if err != nil {
		return nil, apperror.Storage(err, "failed to list cells")
	}

	for _, res := range result {
		for _, cell := range cells {
			if cell.NotebookId == res.Id {
				res.Cells = append(res.Cells, toCellResponse(cell))
			}
		}
	}

	return result, nil
}

func (s *notebookService) Create(ctx context.Context, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notebook := entity.Notebook{
		Id:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := uow.NotebookRepository().Create(ctx, &notebook); err != nil {
		return nil, apperror.Storage(err, "failed to create notebook")
	}

	return &dto.CreateNotebookResponse{
		Id: notebook.Id,
	}, nil
}

func (s *notebookService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowNotebookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load notebook")
	}
	if notebook == nil {
		return nil, apperror.NotFound("notebook %s not found", id)
	}

	cells, err := uow.CellRepository().FindAll(ctx,
		specification.ByNotebookID{NotebookID: id},
		specification.OrderByPosition{},
	)
	if err != nil {
		return nil, apperror.Storage(err, "failed to load cells")
	}

	res := dto.ShowNotebookResponse{
		Id:          notebook.Id,
		Name:        notebook.Name,
		Description: notebook.Description,
		CreatedAt:   notebook.CreatedAt,
		UpdatedAt:   notebook.UpdatedAt,
		Cells:       make([]*dto.CellResponse, 0, len(cells)),
	}
	for _, cell := range cells {
		res.Cells = append(res.Cells, toCellResponse(cell))
	}

	return &res, nil
}

func (s *notebookService) Update(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to load notebook")
	}
	if notebook == nil {
		return nil, apperror.NotFound("notebook %s not found", req.Id)
	}

	now := time.Now()
	notebook.Name = req.Name
	notebook.Description = req.Description
	notebook.UpdatedAt = &now

	if err := uow.NotebookRepository().Update(ctx, notebook); err != nil {
		return nil, apperror.Storage(err, "failed to update notebook")
	}

	return &dto.UpdateNotebookResponse{
		Id: notebook.Id,
	}, nil
}

// Delete removes the notebook and all of its cells in one transaction. The
// schema-level cascade covers crashes between the two deletes; the explicit
// child delete keeps the behavior visible and testable.
func (s *notebookService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Storage(err, "failed to load notebook")
	}
	if notebook == nil {
		return apperror.NotFound("notebook %s not found", id)
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.Storage(err, "failed to start transaction")
	}
	defer uow.Rollback()

	if err := uow.CellRepository().DeleteByNotebookId(ctx, id); err != nil {
		return apperror.Storage(err, "failed to delete cells")
	}

	if err := uow.NotebookRepository().Delete(ctx, id); err != nil {
		return apperror.Storage(err, "failed to delete notebook")
	}

	if err := uow.Commit(); err != nil {
		return apperror.Storage(err, "failed to commit notebook deletion")
	}
	return nil
}
