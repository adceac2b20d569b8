package service

import (
	"context"
	"testing"
	"time"

	"query-workbench-be/internal/apperror"
	"query-workbench-be/internal/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatasetFixture() (*fakeStore, IDatasetService) {
	store := newFakeStore()
	cache := gocache.New(time.Minute, time.Minute)
	return store, NewDatasetService(store.factory(), cache)
}

func TestDatasetRegisterAndResolve(t *testing.T) {
	store, svc := newDatasetFixture()

	res, err := svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name:     "sales",
		FileName: "sales.csv",
		Type:     "csv",
		RowCount: 120,
		Size:     2048,
	})
	require.NoError(t, err)
	assert.Contains(t, store.datasets, res.Id)

	resolved, err := svc.ResolveAll(context.Background())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "sales", resolved[0].Name)
	assert.Equal(t, "sales.csv", resolved[0].FileName)
	assert.Equal(t, "csv", resolved[0].Type)
}

func TestDatasetReRegisterSameNameLastWins(t *testing.T) {
	store, svc := newDatasetFixture()

	first, err := svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name:     "sales",
		FileName: "sales_v1.csv",
		Type:     "csv",
	})
	require.NoError(t, err)

	second, err := svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name:     "sales",
		FileName: "sales_v2.parquet",
		Type:     "parquet",
		RowCount: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id, "re-registration keeps the identity")
	assert.Len(t, store.datasets, 1)
	assert.Equal(t, "sales_v2.parquet", store.datasets[first.Id].FileName)
	assert.Equal(t, int64(500), store.datasets[first.Id].RowCount)
	require.NotNil(t, store.datasets[first.Id].UpdatedAt)
}

func TestDatasetRegisterInvalidatesResolveCache(t *testing.T) {
	_, svc := newDatasetFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name: "a", FileName: "a.csv", Type: "csv",
	})
	require.NoError(t, err)

	resolved, err := svc.ResolveAll(context.Background())
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	_, err = svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name: "b", FileName: "b.csv", Type: "csv",
	})
	require.NoError(t, err)

	resolved, err = svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, resolved, 2, "registration must bust the cached listing")
}

func TestDatasetLookupByNameAndById(t *testing.T) {
	_, svc := newDatasetFixture()

	res, err := svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name: "users", FileName: "users.json", Type: "json",
	})
	require.NoError(t, err)

	byName, err := svc.Lookup(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, res.Id, byName.Id)

	byId, err := svc.Lookup(context.Background(), res.Id.String())
	require.NoError(t, err)
	assert.Equal(t, "users", byId.Name)

	_, err = svc.Lookup(context.Background(), "missing")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDatasetDelete(t *testing.T) {
	store, svc := newDatasetFixture()

	res, err := svc.Register(context.Background(), &dto.RegisterDatasetRequest{
		Name: "temp", FileName: "temp.csv", Type: "csv",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), res.Id))
	assert.NotContains(t, store.datasets, res.Id)

	resolved, err := svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resolved)

	err = svc.Delete(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
