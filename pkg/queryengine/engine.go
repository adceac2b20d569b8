package queryengine

import (
	"context"
	"fmt"
)

// Dataset is the execution-time view of a registered dataset. Queries name
// datasets by identifier; resolution happens here, not via foreign keys.
type Dataset struct {
	Name     string
	FileName string
	Type     string
}

// Result is the structured outcome of a query: ordered columns and rows for
// tabular backends, or a document tree for GraphQL.
type Result struct {
	Columns  []string               `json:"columns,omitempty"`
	Rows     [][]interface{}        `json:"rows,omitempty"`
	Document map[string]interface{} `json:"document,omitempty"`
}

// Executor is the capability each language backend implements. A returned
// error is an execution error (bad query, missing dataset, backend fault),
// never a system fault.
type Executor interface {
	Execute(ctx context.Context, query string, datasets []Dataset) (*Result, error)
}

// DatasetResolver supplies the dataset context at execution time.
type DatasetResolver interface {
	ResolveAll(ctx context.Context) ([]Dataset, error)
}

// Dispatcher routes query text to the backend registered for its language.
// It performs no retries; retry policy belongs to the caller.
type Dispatcher struct {
	executors map[string]Executor
	resolver  DatasetResolver
}

func NewDispatcher(resolver DatasetResolver) *Dispatcher {
	return &Dispatcher{
		executors: make(map[string]Executor),
		resolver:  resolver,
	}
}

func (d *Dispatcher) Register(language string, executor Executor) {
	d.executors[language] = executor
}

// Dispatch resolves the dataset context and runs the query on the backend for
// the given language tag. A panicking backend is caught here and converted
// into an error result; callers never observe an unhandled fault.
func (d *Dispatcher) Dispatch(ctx context.Context, language, query string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("query backend fault: %v", r)
		}
	}()

	executor, ok := d.executors[language]
	if !ok {
		return nil, fmt.Errorf("no query backend registered for language %q", language)
	}

	datasets, resolveErr := d.resolver.ResolveAll(ctx)
	if resolveErr != nil {
		return nil, fmt.Errorf("failed to resolve datasets: %v", resolveErr)
	}

	return executor.Execute(ctx, query, datasets)
}
