package service

import (
	"context"
	"testing"
	"time"

	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/entity"
	"query-workbench-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotebook(store *fakeStore, cellCount int) (uuid.UUID, []uuid.UUID) {
	notebookId := uuid.New()
	store.notebooks[notebookId] = &entity.Notebook{
		Id:        notebookId,
		Name:      "analysis",
		CreatedAt: time.Now(),
	}

	cellIds := make([]uuid.UUID, 0, cellCount)
	for i := 0; i < cellCount; i++ {
		id := uuid.New()
		store.cells[id] = &entity.Cell{
			Id:         id,
			NotebookId: notebookId,
			Query:      "SELECT 1",
			Language:   entity.LanguageSQL,
			Status:     entity.StatusNotRun,
			Position:   i,
			CreatedAt:  time.Now(),
		}
		cellIds = append(cellIds, id)
	}
	return notebookId, cellIds
}

func positionsByCell(store *fakeStore, notebookId uuid.UUID) map[uuid.UUID]int {
	result := make(map[uuid.UUID]int)
	for id, c := range store.cells {
		if c.NotebookId == notebookId {
			result[id] = c.Position
		}
	}
	return result
}

func assertContiguous(t *testing.T, store *fakeStore, notebookId uuid.UUID, want int) {
	t.Helper()
	seen := make(map[int]bool)
	for _, c := range store.cells {
		if c.NotebookId != notebookId {
			continue
		}
		require.False(t, seen[c.Position], "duplicate position %d", c.Position)
		seen[c.Position] = true
	}
	require.Len(t, seen, want)
	for i := 0; i < want; i++ {
		require.True(t, seen[i], "missing position %d", i)
	}
}

func TestCellCreateShiftsOccupiedPositions(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 3)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	res, err := svc.Create(context.Background(), &dto.CreateCellRequest{
		NotebookId: notebookId,
		Query:      "SELECT 2",
		Language:   "SQL",
		Position:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Position)

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 0, positions[cellIds[0]])
	assert.Equal(t, 2, positions[cellIds[1]], "cell formerly at 1 shifts to 2")
	assert.Equal(t, 3, positions[cellIds[2]], "cell formerly at 2 shifts to 3")
	assertContiguous(t, store, notebookId, 4)
}

func TestCellCreateBeyondEndKeepsRequestedPosition(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 2)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	res, err := svc.Create(context.Background(), &dto.CreateCellRequest{
		NotebookId: notebookId,
		Position:   99,
	})
	require.NoError(t, err)
	assert.Equal(t, 99, res.Position, "out-of-range positions are honored, not clamped")

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 0, positions[cellIds[0]])
	assert.Equal(t, 1, positions[cellIds[1]])
	assert.Equal(t, 99, positions[res.Id])
}

func TestCellCreateRejectsNegativePosition(t *testing.T) {
	store := newFakeStore()
	notebookId, _ := seedNotebook(store, 1)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	_, err := svc.Create(context.Background(), &dto.CreateCellRequest{
		NotebookId: notebookId,
		Position:   -1,
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestCellCreateUnknownNotebook(t *testing.T) {
	store := newFakeStore()
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	_, err := svc.Create(context.Background(), &dto.CreateCellRequest{
		NotebookId: uuid.New(),
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCellCreateRejectsUnknownLanguage(t *testing.T) {
	store := newFakeStore()
	notebookId, _ := seedNotebook(store, 0)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	_, err := svc.Create(context.Background(), &dto.CreateCellRequest{
		NotebookId: notebookId,
		Language:   "Cypher",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestCellMoveToLowerPosition(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 4)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	res, err := svc.Move(context.Background(), &dto.MoveCellRequest{
		Id:       cellIds[3],
		Position: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Position)

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 0, positions[cellIds[3]])
	assert.Equal(t, 1, positions[cellIds[0]])
	assert.Equal(t, 2, positions[cellIds[1]])
	assert.Equal(t, 3, positions[cellIds[2]])
	assertContiguous(t, store, notebookId, 4)
}

func TestCellMoveToHigherPosition(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 4)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	res, err := svc.Move(context.Background(), &dto.MoveCellRequest{
		Id:       cellIds[0],
		Position: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Position)

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 0, positions[cellIds[1]])
	assert.Equal(t, 1, positions[cellIds[2]])
	assert.Equal(t, 2, positions[cellIds[0]])
	assert.Equal(t, 3, positions[cellIds[3]])
	assertContiguous(t, store, notebookId, 4)
}

func TestCellMoveSamePositionIsNoop(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 3)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	before := positionsByCell(store, notebookId)
	res, err := svc.Move(context.Background(), &dto.MoveCellRequest{
		Id:       cellIds[1],
		Position: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Position)
	assert.Equal(t, before, positionsByCell(store, notebookId))
}

func TestCellMoveBeyondEndKeepsRequestedPosition(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 3)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	res, err := svc.Move(context.Background(), &dto.MoveCellRequest{
		Id:       cellIds[0],
		Position: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, 99, res.Position, "out-of-range positions are honored, not clamped")

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 99, positions[cellIds[0]])
	assert.Equal(t, 1, positions[cellIds[1]], "cells outside the move range stay put")
	assert.Equal(t, 2, positions[cellIds[2]])
}

func TestCellMoveIntoFreePositionDoesNotShift(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 3)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	// Deleting the middle cell leaves a gap at 1.
	require.NoError(t, svc.Delete(context.Background(), cellIds[1]))

	res, err := svc.Move(context.Background(), &dto.MoveCellRequest{
		Id:       cellIds[2],
		Position: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Position)

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 0, positions[cellIds[0]], "a move into a free slot shifts nothing")
	assert.Equal(t, 1, positions[cellIds[2]])
}

func TestCellMoveRejectsNegativePosition(t *testing.T) {
	store := newFakeStore()
	_, cellIds := seedNotebook(store, 1)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	_, err := svc.Move(context.Background(), &dto.MoveCellRequest{
		Id:       cellIds[0],
		Position: -3,
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestCellMoveReloadsPositionUnderLock(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 2)
	locks := memory.NewNotebookLocks()
	svc := NewCellService(store.factory(), locks)

	// Hold the notebook lock so the move blocks after its first read, then
	// swap the two cells underneath it. The move must act on the positions it
	// finds once it owns the lock, not on the pre-lock snapshot.
	locks.Lock(notebookId)

	done := make(chan struct{})
	var res *dto.MoveCellResponse
	var moveErr error
	go func() {
		defer close(done)
		res, moveErr = svc.Move(context.Background(), &dto.MoveCellRequest{
			Id:       cellIds[0],
			Position: 0,
		})
	}()

	time.Sleep(50 * time.Millisecond)
	store.mu.Lock()
	store.cells[cellIds[0]].Position = 1
	store.cells[cellIds[1]].Position = 0
	store.mu.Unlock()
	locks.Unlock(notebookId)

	<-done
	require.NoError(t, moveErr)
	assert.Equal(t, 0, res.Position)

	positions := positionsByCell(store, notebookId)
	assert.Equal(t, 0, positions[cellIds[0]], "stale pre-lock position must not short-circuit the move")
	assert.Equal(t, 1, positions[cellIds[1]])
}

func TestCellMoveUnknownCell(t *testing.T) {
	store := newFakeStore()
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	_, err := svc.Move(context.Background(), &dto.MoveCellRequest{Id: uuid.New(), Position: 0})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCellDeleteLeavesPositionGap(t *testing.T) {
	store := newFakeStore()
	notebookId, cellIds := seedNotebook(store, 3)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	err := svc.Delete(context.Background(), cellIds[1])
	require.NoError(t, err)

	positions := positionsByCell(store, notebookId)
	require.Len(t, positions, 2)
	assert.Equal(t, 0, positions[cellIds[0]])
	assert.Equal(t, 2, positions[cellIds[2]], "survivors keep their positions; the gap at 1 remains")
}

func TestCellUpdateQueryPreservesExecutionState(t *testing.T) {
	store := newFakeStore()
	_, cellIds := seedNotebook(store, 1)
	svc := NewCellService(store.factory(), memory.NewNotebookLocks())

	resultErr := "boom"
	store.cells[cellIds[0]].Status = entity.StatusError
	store.cells[cellIds[0]].ResultError = &resultErr

	_, err := svc.UpdateQuery(context.Background(), &dto.UpdateCellQueryRequest{
		Id:       cellIds[0],
		Query:    "SELECT 42",
		Language: "GraphQL",
	})
	require.NoError(t, err)

	cell := store.cells[cellIds[0]]
	assert.Equal(t, "SELECT 42", cell.Query)
	assert.Equal(t, entity.LanguageGraphQL, cell.Language)
	assert.Equal(t, entity.StatusError, cell.Status, "editing the query never touches execution state")
	assert.Equal(t, &resultErr, cell.ResultError)
}
