package graphqlengine

import (
	"context"
	"fmt"
	"testing"

	"query-workbench-be/pkg/queryengine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	columns []string
	rows    [][]interface{}
	err     error

	gotDataset queryengine.Dataset
	gotLimit   int
}

func (s *stubSource) FetchRows(ctx context.Context, ds queryengine.Dataset, limit int) ([]string, [][]interface{}, error) {
	s.gotDataset = ds
	s.gotLimit = limit
	return s.columns, s.rows, s.err
}

func sampleDatasets() []queryengine.Dataset {
	return []queryengine.Dataset{
		{Name: "sales", FileName: "sales.csv", Type: "csv"},
		{Name: "users", FileName: "users.parquet", Type: "parquet"},
	}
}

func TestGraphQLDatasetsField(t *testing.T) {
	engine := New(&stubSource{}, 100)

	result, err := engine.Execute(context.Background(), `{ datasets { name type } }`, sampleDatasets())
	require.NoError(t, err)
	require.NotNil(t, result.Document)

	datasets, ok := result.Document["datasets"].([]interface{})
	require.True(t, ok, "datasets should be a list, got %T", result.Document["datasets"])
	assert.Len(t, datasets, 2)

	first, ok := datasets[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sales", first["name"])
	assert.Equal(t, "csv", first["type"])
}

func TestGraphQLRowsField(t *testing.T) {
	source := &stubSource{
		columns: []string{"id", "amount"},
		rows:    [][]interface{}{{1, 10.5}, {2, 20.0}},
	}
	engine := New(source, 100)

	result, err := engine.Execute(context.Background(), `{ rows(dataset: "sales", limit: 10) }`, sampleDatasets())
	require.NoError(t, err)

	assert.Equal(t, "sales", source.gotDataset.Name)
	assert.Equal(t, 10, source.gotLimit)

	rows, ok := result.Document["rows"].([]interface{})
	require.True(t, ok, "rows should be a list, got %T", result.Document["rows"])
	assert.Len(t, rows, 2)
}

func TestGraphQLRowsLimitCappedByMaxRows(t *testing.T) {
	source := &stubSource{columns: []string{"id"}}
	engine := New(source, 5)

	_, err := engine.Execute(context.Background(), `{ rows(dataset: "sales", limit: 100) }`, sampleDatasets())
	require.NoError(t, err)
	assert.Equal(t, 5, source.gotLimit, "requested limit above the cap falls back to the cap")
}

func TestGraphQLUnknownDatasetIsExecutionError(t *testing.T) {
	engine := New(&stubSource{}, 100)

	_, err := engine.Execute(context.Background(), `{ rows(dataset: "missing") }`, sampleDatasets())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestGraphQLSourceFailurePropagates(t *testing.T) {
	engine := New(&stubSource{err: fmt.Errorf("file vanished")}, 100)

	_, err := engine.Execute(context.Background(), `{ rows(dataset: "sales") }`, sampleDatasets())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file vanished")
}

func TestGraphQLMalformedQuery(t *testing.T) {
	engine := New(&stubSource{}, 100)

	_, err := engine.Execute(context.Background(), `{ rows(dataset: `, sampleDatasets())
	assert.Error(t, err)
}

func TestGraphQLEmptyQuery(t *testing.T) {
	engine := New(&stubSource{}, 100)

	_, err := engine.Execute(context.Background(), "  ", nil)
	assert.Error(t, err)
}
