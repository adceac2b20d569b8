package graphqlengine

import (
	"context"
	"fmt"
	"strings"

	"query-workbench-be/pkg/queryengine"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// RowSource reads rows of a single dataset, typically backed by the SQL
// engine's embedded OLAP store.
type RowSource interface {
	FetchRows(ctx context.Context, ds queryengine.Dataset, limit int) ([]string, [][]interface{}, error)
}

// Engine executes GraphQL cells against a schema derived from the registered
// datasets: `datasets` exposes registry metadata, `rows(dataset:…)` exposes
// the data itself.
type Engine struct {
	source  RowSource
	maxRows int
}

var _ queryengine.Executor = &Engine{}

func New(source RowSource, maxRows int) *Engine {
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &Engine{source: source, maxRows: maxRows}
}

// jsonScalar carries schemaless row objects through GraphQL responses.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return nil
	},
})

var datasetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dataset",
	Fields: graphql.Fields{
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"fileName": &graphql.Field{Type: graphql.String},
		"type":     &graphql.Field{Type: graphql.String},
	},
})

func (e *Engine) Execute(ctx context.Context, query string, datasets []queryengine.Dataset) (*queryengine.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	schema, err := e.buildSchema(datasets)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %v", err)
	}

	response := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       ctx,
	})

	if len(response.Errors) > 0 {
		messages := make([]string, len(response.Errors))
		for i, gqlErr := range response.Errors {
			messages[i] = gqlErr.Message
		}
		return nil, fmt.Errorf("%s", strings.Join(messages, "; "))
	}

	document, _ := response.Data.(map[string]interface{})
	return &queryengine.Result{Document: document}, nil
}

func (e *Engine) buildSchema(datasets []queryengine.Dataset) (graphql.Schema, error) {
	byName := make(map[string]queryengine.Dataset, len(datasets))
	for _, ds := range datasets {
		byName[ds.Name] = ds
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"datasets": &graphql.Field{
				Type: graphql.NewList(datasetType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					out := make([]map[string]interface{}, len(datasets))
					for i, ds := range datasets {
						out[i] = map[string]interface{}{
							"name":     ds.Name,
							"fileName": ds.FileName,
							"type":     ds.Type,
						}
					}
					return out, nil
				},
			},
			"rows": &graphql.Field{
				Type: graphql.NewList(jsonScalar),
				Args: graphql.FieldConfigArgument{
					"dataset": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["dataset"].(string)
					ds, ok := byName[name]
					if !ok {
						return nil, fmt.Errorf("dataset %q is not registered", name)
					}

					limit := e.maxRows
					if l, ok := p.Args["limit"].(int); ok && l > 0 && l < limit {
						limit = l
					}

					columns, rows, err := e.source.FetchRows(p.Context, ds, limit)
					if err != nil {
						return nil, err
					}

					out := make([]map[string]interface{}, len(rows))
					for i, row := range rows {
						record := make(map[string]interface{}, len(columns))
						for j, col := range columns {
							record[col] = row[j]
						}
						out[i] = record
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
