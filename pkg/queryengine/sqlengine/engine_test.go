package sqlengine

import (
	"testing"
	"time"

	"query-workbench-be/pkg/queryengine"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sales", "sales"},
		{"monthly sales", "monthly_sales"},
		{"sales-2024.csv", "sales_2024_csv"},
		{"2024data", "ds_2024data"},
		{"", "ds_"},
		{"weird;drop table", "weird_drop_table"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeValue(t *testing.T) {
	if got := normalizeValue([]byte("hello")); got != "hello" {
		t.Errorf("bytes should normalize to string, got %v", got)
	}

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := normalizeValue(ts); got != "2024-03-01T12:00:00Z" {
		t.Errorf("time should normalize to RFC3339, got %v", got)
	}

	if got := normalizeValue(int64(7)); got != int64(7) {
		t.Errorf("plain values should pass through, got %v", got)
	}
	if got := normalizeValue(nil); got != nil {
		t.Errorf("nil should pass through, got %v", got)
	}
}

func TestReaderForTypes(t *testing.T) {
	e := &Engine{config: Config{DatasetStorage: "/data"}}

	tests := []struct {
		dsType  string
		want    string
		wantErr bool
	}{
		{"csv", "read_csv_auto('/data/f')", false},
		{"CSV", "read_csv_auto('/data/f')", false},
		{"parquet", "read_parquet('/data/f')", false},
		{"json", "read_json_auto('/data/f')", false},
		{"ndjson", "read_json_auto('/data/f')", false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		got, err := e.readerFor(queryengine.Dataset{Name: "d", FileName: "f", Type: tt.dsType})
		if tt.wantErr {
			if err == nil {
				t.Errorf("readerFor(%q) expected error", tt.dsType)
			}
			continue
		}
		if err != nil {
			t.Errorf("readerFor(%q) unexpected error: %v", tt.dsType, err)
			continue
		}
		if got != tt.want {
			t.Errorf("readerFor(%q) = %q, want %q", tt.dsType, got, tt.want)
		}
	}
}
