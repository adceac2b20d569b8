package nlengine

import (
	"context"
	"fmt"
	"strings"

	"query-workbench-be/pkg/llm"
	"query-workbench-be/pkg/queryengine"
	"query-workbench-be/pkg/queryengine/sqlengine"
)

// Engine translates a natural language question into a single SQL statement
// via an LLM provider, then delegates execution to the SQL backend. A failed
// translation is an execution error like any other bad query.
type Engine struct {
	provider llm.LLMProvider
	delegate queryengine.Executor
}

var _ queryengine.Executor = &Engine{}

func New(provider llm.LLMProvider, delegate queryengine.Executor) *Engine {
	return &Engine{provider: provider, delegate: delegate}
}

func (e *Engine) Execute(ctx context.Context, query string, datasets []queryengine.Dataset) (*queryengine.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	prompt := BuildPrompt(query, datasets)

	response, err := e.provider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("natural language translation failed: %v", err)
	}

	sqlText, err := ExtractSQL(response)
	if err != nil {
		return nil, err
	}

	return e.delegate.Execute(ctx, sqlText, datasets)
}

// ExtractSQL pulls the SQL statement out of a model response, tolerating
// markdown code fences and trailing prose.
func ExtractSQL(response string) (string, error) {
	text := strings.TrimSpace(response)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		// Drop a language hint such as ```sql
		if newline := strings.Index(text, "\n"); newline >= 0 {
			firstLine := strings.TrimSpace(text[:newline])
			if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, " ;") {
				text = text[newline+1:]
			}
		}
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	text = strings.TrimSpace(text)
	if semi := strings.Index(text, ";"); semi >= 0 {
		text = text[:semi]
	}
	text = strings.TrimSpace(text)

	if text == "" {
		return "", fmt.Errorf("translation produced no SQL statement")
	}

	lowered := strings.ToLower(text)
	if !strings.HasPrefix(lowered, "select") && !strings.HasPrefix(lowered, "with") {
		return "", fmt.Errorf("translation produced a non-SELECT statement: %.80s", text)
	}

	return text, nil
}

// BuildPrompt renders the translation prompt with the available dataset
// identifiers so the model only references registered names.
func BuildPrompt(question string, datasets []queryengine.Dataset) string {
	var b strings.Builder
	b.WriteString(translationPrompt)
	b.WriteString("\n\nAvailable datasets (query them as tables by these exact names):\n")
	if len(datasets) == 0 {
		b.WriteString("- (none registered)\n")
	}
	for _, ds := range datasets {
		fmt.Fprintf(&b, "- %s (%s)\n", sqlengine.SanitizeName(ds.Name), ds.Type)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
