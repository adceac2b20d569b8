package service

import (
	"context"
	"time"

	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/specification"
	"query-workbench-be/internal/repository/unitofwork"
	"query-workbench-be/pkg/queryengine"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const datasetCacheKey = "datasets:all"

type IDatasetService interface {
	Register(ctx context.Context, req *dto.RegisterDatasetRequest) (*dto.RegisterDatasetResponse, error)
	GetAll(ctx context.Context) ([]*dto.DatasetResponse, error)
	Lookup(ctx context.Context, ref string) (*dto.DatasetResponse, error)
	Update(ctx context.Context, req *dto.UpdateDatasetRequest) (*dto.UpdateDatasetResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ResolveAll feeds the query engines their execution-time dataset view.
	ResolveAll(ctx context.Context) ([]queryengine.Dataset, error)
}

type datasetService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
}

func NewDatasetService(uowFactory unitofwork.RepositoryFactory, cache *gocache.Cache) IDatasetService {
	return &datasetService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

func toDatasetResponse(dataset *entity.Dataset) *dto.DatasetResponse {
	return &dto.DatasetResponse{
		Id:          dataset.Id,
		Name:        dataset.Name,
		FileName:    dataset.FileName,
		Type:        dataset.Type,
		Description: dataset.Description,
		RowCount:    dataset.RowCount,
		Size:        dataset.Size,
		CreatedAt:   dataset.CreatedAt,
		UpdatedAt:   dataset.UpdatedAt,
	}
}

// Register creates a dataset, or overwrites the existing registration when
// the name is already taken. Re-registering under the same name is how a
// dataset is refreshed, so last write wins.
func (s *datasetService) Register(ctx context.Context, req *dto.RegisterDatasetRequest) (*dto.RegisterDatasetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DatasetRepository().FindOne(ctx, specification.ByName{Name: req.Name})
	if err != nil {
		return nil, apperror.Storage(err, "failed to look up dataset")
	}

	if existing != nil {
		now := time.Now()
		existing.FileName = req.FileName
		existing.Type = req.Type
		existing.Description = req.Description
		existing.RowCount = req.RowCount
		existing.Size = req.Size
		existing.UpdatedAt = &now

		if err := uow.DatasetRepository().Update(ctx, existing); err != nil {
			return nil, apperror.Storage(err, "failed to refresh dataset")
		}
		s.cache.Delete(datasetCacheKey)
		return &dto.RegisterDatasetResponse{Id: existing.Id}, nil
	}

	dataset := entity.Dataset{
		Id:          uuid.New(),
		Name:        req.Name,
		FileName:    req.FileName,
		Type:        req.Type,
		Description: req.Description,
		RowCount:    req.RowCount,
		Size:        req.Size,
		CreatedAt:   time.Now(),
	}
	if err := uow.DatasetRepository().Create(ctx, &dataset); err != nil {
		return nil, apperror.Storage(err, "failed to register dataset")
	}

	s.cache.Delete(datasetCacheKey)
	return &dto.RegisterDatasetResponse{Id: dataset.Id}, nil
}

func (s *datasetService) listAll(ctx context.Context) ([]*entity.Dataset, error) {
	if cached, found := s.cache.Get(datasetCacheKey); found {
		return cached.([]*entity.Dataset), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	datasets, err := uow.DatasetRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}

	s.cache.Set(datasetCacheKey, datasets, gocache.DefaultExpiration)
	return datasets, nil
}

func (s *datasetService) GetAll(ctx context.Context) ([]*dto.DatasetResponse, error) {
	datasets, err := s.listAll(ctx)
	if err != nil {
		return nil, apperror.Storage(err, "failed to list datasets")
	}

	result := make([]*dto.DatasetResponse, 0, len(datasets))
	for _, dataset := range datasets {
		result = append(result, toDatasetResponse(dataset))
	}
	return result, nil
}

// Lookup accepts either a dataset id or a dataset name, matching how queries
// reference datasets by name while the API addresses them by id.
func (s *datasetService) Lookup(ctx context.Context, ref string) (*dto.DatasetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var dataset *entity.Dataset
	var err error
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		dataset, err = uow.DatasetRepository().FindOne(ctx, specification.ByID{ID: id})
	} else {
		dataset, err = uow.DatasetRepository().FindOne(ctx, specification.ByName{Name: ref})
	}
	if err != nil {
		return nil, apperror.Storage(err, "failed to look up dataset")
	}
	if dataset == nil {
		return nil, apperror.NotFound("dataset %s not found", ref)
	}

	return toDatasetResponse(dataset), nil
}

func (s *datasetService) Update(ctx context.Context, req *dto.UpdateDatasetRequest) (*dto.UpdateDatasetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	dataset, err := uow.DatasetRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, apperror.Storage(err, "failed to look up dataset")
	}
	if dataset == nil {
		return nil, apperror.NotFound("dataset %s not found", req.Id)
	}

	now := time.Now()
	dataset.Description = req.Description
	dataset.UpdatedAt = &now

	if err := uow.DatasetRepository().Update(ctx, dataset); err != nil {
		return nil, apperror.Storage(err, "failed to update dataset")
	}

	s.cache.Delete(datasetCacheKey)
	return &dto.UpdateDatasetResponse{Id: dataset.Id}, nil
}

// Delete unregisters a dataset. Cells that mention the dataset by name keep
// their stored results; only future runs will fail to resolve it.
func (s *datasetService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	dataset, err := uow.DatasetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Storage(err, "failed to look up dataset")
	}
	if dataset == nil {
		return apperror.NotFound("dataset %s not found", id)
	}

	if err := uow.DatasetRepository().Delete(ctx, id); err != nil {
		return apperror.Storage(err, "failed to delete dataset")
	}

	s.cache.Delete(datasetCacheKey)
	return nil
}

func (s *datasetService) ResolveAll(ctx context.Context) ([]queryengine.Dataset, error) {
	datasets, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]queryengine.Dataset, 0, len(datasets))
	for _, dataset := range datasets {
		resolved = append(resolved, queryengine.Dataset{
			Name:     dataset.Name,
			FileName: dataset.FileName,
			Type:     dataset.Type,
		})
	}
	return resolved, nil
}
