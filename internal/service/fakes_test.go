package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/contract"
	"query-workbench-be/internal/repository/specification"
	"query-workbench-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repository fakes. Specifications are interpreted by type switch;
// a spec the fake does not know is a test bug, not silently ignored.

type fakeStore struct {
	mu        sync.Mutex
	notebooks map[uuid.UUID]*entity.Notebook
	cells     map[uuid.UUID]*entity.Cell
	datasets  map[uuid.UUID]*entity.Dataset
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notebooks: make(map[uuid.UUID]*entity.Notebook),
		cells:     make(map[uuid.UUID]*entity.Cell),
		datasets:  make(map[uuid.UUID]*entity.Dataset),
	}
}

func (s *fakeStore) factory() unitofwork.RepositoryFactory {
	return &fakeFactory{store: s}
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) NotebookRepository() contract.NotebookRepository {
	return &fakeNotebookRepo{store: u.store}
}

func (u *fakeUow) CellRepository() contract.CellRepository {
	return &fakeCellRepo{store: u.store}
}

func (u *fakeUow) DatasetRepository() contract.DatasetRepository {
	return &fakeDatasetRepo{store: u.store}
}

type cellFilter struct {
	id          *uuid.UUID
	notebookId  *uuid.UUID
	notebookIds []uuid.UUID
	position    *int
	status      *string
}

func cellFilterFrom(specs []specification.Specification) cellFilter {
	var f cellFilter
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			f.id = &id
		case specification.ByNotebookID:
			id := s.NotebookID
			f.notebookId = &id
		case specification.ByNotebookIDs:
			f.notebookIds = s.NotebookIDs
		case specification.ByPosition:
			p := s.Position
			f.position = &p
		case specification.ByStatus:
			st := s.Status
			f.status = &st
		case specification.OrderByPosition, specification.OrderBy:
			// ordering applied unconditionally below
		default:
			panic(fmt.Sprintf("fake repo cannot interpret spec %T", spec))
		}
	}
	return f
}

func (f cellFilter) matches(c *entity.Cell) bool {
	if f.id != nil && c.Id != *f.id {
		return false
	}
	if f.notebookId != nil && c.NotebookId != *f.notebookId {
		return false
	}
	if f.notebookIds != nil {
		found := false
		for _, id := range f.notebookIds {
			if c.NotebookId == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.position != nil && c.Position != *f.position {
		return false
	}
	if f.status != nil && string(c.Status) != *f.status {
		return false
	}
	return true
}

type fakeCellRepo struct {
	store *fakeStore
}

func (r *fakeCellRepo) Create(ctx context.Context, cell *entity.Cell) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.cells {
		if existing.NotebookId == cell.NotebookId && existing.Position == cell.Position {
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_cells_notebook_position\"")
		}
	}
	copied := *cell
	r.store.cells[cell.Id] = &copied
	return nil
}

func (r *fakeCellRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.cells, id)
	return nil
}

func (r *fakeCellRepo) DeleteByNotebookId(ctx context.Context, notebookId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, c := range r.store.cells {
		if c.NotebookId == notebookId {
			delete(r.store.cells, id)
		}
	}
	return nil
}

func (r *fakeCellRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cell, error) {
	cells, err := r.FindAll(ctx, specs...)
	if err != nil || len(cells) == 0 {
		return nil, err
	}
	return cells[0], nil
}

func (r *fakeCellRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cell, error) {
	filter := cellFilterFrom(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*entity.Cell
	for _, c := range r.store.cells {
		if filter.matches(c) {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (r *fakeCellRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	cells, err := r.FindAll(ctx, specs...)
	return int64(len(cells)), err
}

func (r *fakeCellRepo) UpdateQuery(ctx context.Context, id uuid.UUID, query string, language entity.QueryLanguage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.cells[id]; ok {
		c.Query = query
		c.Language = language
	}
	return nil
}

func (r *fakeCellRepo) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	target, ok := r.store.cells[id]
	if !ok {
		return nil
	}
	for _, other := range r.store.cells {
		if other.Id != id && other.NotebookId == target.NotebookId && other.Position == position {
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_cells_notebook_position\"")
		}
	}
	target.Position = position
	return nil
}

func (r *fakeCellRepo) ShiftPositionsFrom(ctx context.Context, notebookId uuid.UUID, from int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.cells {
		if c.NotebookId == notebookId && c.Position >= from {
			c.Position++
		}
	}
	return nil
}

func (r *fakeCellRepo) ParkPosition(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.cells[id]; ok {
		c.Position = -1
	}
	return nil
}

func (r *fakeCellRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.cells[id]; ok {
		c.Status = entity.StatusRunning
		c.ResultData = nil
		c.ResultError = nil
	}
	return nil
}

func (r *fakeCellRepo) CompleteRun(ctx context.Context, id uuid.UUID, status entity.ExecutionStatus, resultData []byte, resultError *string, lastRunAt time.Time, executionTime float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.cells[id]; ok {
		c.Status = status
		c.ResultData = resultData
		c.ResultError = resultError
		at := lastRunAt
		c.LastRunAt = &at
		et := executionTime
		c.ExecutionTime = &et
	}
	return nil
}

func (r *fakeCellRepo) ReconcileRunning(ctx context.Context, message string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var affected int64
	now := time.Now()
	for _, c := range r.store.cells {
		if c.Status == entity.StatusRunning {
			c.Status = entity.StatusError
			c.ResultData = nil
			msg := message
			c.ResultError = &msg
			c.LastRunAt = &now
			affected++
		}
	}
	return affected, nil
}

type fakeNotebookRepo struct {
	store *fakeStore
}

func (r *fakeNotebookRepo) Create(ctx context.Context, notebook *entity.Notebook) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *notebook
	r.store.notebooks[notebook.Id] = &copied
	return nil
}

func (r *fakeNotebookRepo) Update(ctx context.Context, notebook *entity.Notebook) error {
	return r.Create(ctx, notebook)
}

func (r *fakeNotebookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.notebooks, id)
	return nil
}

func (r *fakeNotebookRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notebook, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if s, ok := spec.(specification.ByID); ok {
			if n, found := r.store.notebooks[s.ID]; found {
				copied := *n
				return &copied, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeNotebookRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notebook, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Notebook
	for _, n := range r.store.notebooks {
		copied := *n
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeNotebookRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.notebooks)), nil
}

type fakeDatasetRepo struct {
	store *fakeStore
}

func (r *fakeDatasetRepo) Create(ctx context.Context, dataset *entity.Dataset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *dataset
	r.store.datasets[dataset.Id] = &copied
	return nil
}

func (r *fakeDatasetRepo) Update(ctx context.Context, dataset *entity.Dataset) error {
	return r.Create(ctx, dataset)
}

func (r *fakeDatasetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.datasets, id)
	return nil
}

func (r *fakeDatasetRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dataset, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d, found := r.store.datasets[s.ID]; found {
				copied := *d
				return &copied, nil
			}
			return nil, nil
		case specification.ByName:
			for _, d := range r.store.datasets {
				if d.Name == s.Name {
					copied := *d
					return &copied, nil
				}
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeDatasetRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Dataset, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Dataset
	for _, d := range r.store.datasets {
		copied := *d
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *fakeDatasetRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.datasets)), nil
}
