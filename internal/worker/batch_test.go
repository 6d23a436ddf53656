package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/polarity/internal/model"
)

type mockAnalyzer struct {
	fail map[string]bool
}

func (m *mockAnalyzer) Analyze(ctx context.Context, source string) (*model.Report, error) {
	if m.fail[source] {
		return nil, errors.New("analysis failed")
	}
	return &model.Report{Subject: source, Source: source}, nil
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	analyzer := &mockAnalyzer{fail: map[string]bool{"bad.csv": true}}
	bp := NewBatchProcessor(analyzer, 2)

	sources := []string{"a.csv", "bad.csv", "c.csv", "d.csv"}
	results := bp.ProcessSources(context.Background(), sources)

	if len(results) != len(sources) {
		t.Fatalf("Expected %d results, got %d", len(sources), len(results))
	}
	for i, r := range results {
		if r.Source != sources[i] {
			t.Errorf("Result %d: expected source %s, got %s", i, sources[i], r.Source)
		}
	}
	if results[1].Error == nil {
		t.Error("Expected bad.csv to fail")
	}
	if results[0].Report == nil || results[0].Report.Subject != "a.csv" {
		t.Errorf("Expected report for a.csv, got %+v", results[0].Report)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	bp := NewBatchProcessor(&mockAnalyzer{}, 2)
	if got := bp.ProcessSources(context.Background(), nil); len(got) != 0 {
		t.Errorf("Expected no results, got %d", len(got))
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	content := "# datasets\nreviews.csv\n\nhttps://example.com/a.csv\nreviews.csv\n  # indented comment\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %v", sources)
	}
	if sources[0] != "reviews.csv" || sources[1] != "https://example.com/a.csv" {
		t.Errorf("Unexpected sources: %v", sources)
	}
}

func TestBatchProcessor_ProcessFile_Missing(t *testing.T) {
	bp := NewBatchProcessor(&mockAnalyzer{}, 1)
	if _, err := bp.ProcessFile(context.Background(), "/nonexistent/sources.txt"); err == nil {
		t.Error("Expected error for missing file")
	}
}
