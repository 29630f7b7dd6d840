package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/parser"
)

func TestMapFilesIndexed(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "a.py", "def a():\n    pass\n"),
		createTestFile(t, tmpDir, "b.py", "def b():\n    pass\n"),
		createTestFile(t, tmpDir, "c.py", "def c():\n    pass\n"),
	}

	results, errs := MapFilesIndexed(context.Background(), files, Options{}, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	})

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}
	want := []string{"a.py", "b.py", "c.py"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("Result[%d] = %q, want %q", i, results[i], want[i])
		}
	}
}

func TestMapFilesIndexed_EmptyFileList(t *testing.T) {
	results, errs := MapFilesIndexed(context.Background(), []string{}, Options{}, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	})

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFilesIndexed_PreservesOrder(t *testing.T) {
	tmpDir := t.TempDir()

	files := make([]string, 100)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("file%d.py", i), "x = 1\n")
	}

	results, errs := MapFilesIndexed(context.Background(), files, Options{Workers: 8}, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	})

	if errs != nil && errs.HasErrors() {
		t.Errorf("Unexpected errors: %v", errs)
	}
	for i, r := range results {
		expected := fmt.Sprintf("file%d.py", i)
		if r != expected {
			t.Errorf("Result[%d] = %q, want %q", i, r, expected)
		}
	}
}

func TestMapFilesIndexed_WithErrors(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "file0.py", "x = 0\n"),
		createTestFile(t, tmpDir, "file1.py", "x = 1\n"),
		createTestFile(t, tmpDir, "file2.py", "x = 2\n"),
	}

	errBoom := errors.New("simulated error")
	results, errs := MapFilesIndexed(context.Background(), files, Options{}, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "file1.py" {
			return "", errBoom
		}
		return filepath.Base(path), nil
	})

	if len(results) != len(files) {
		t.Fatalf("Expected %d result slots, got %d", len(files), len(results))
	}
	if results[1] != "" {
		t.Errorf("Error slot should be empty, got %q", results[1])
	}
	if results[0] != "file0.py" || results[2] != "file2.py" {
		t.Errorf("Unexpected results: %v", results)
	}

	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", errs)
	}
	if errs.Errors[0].Index != 1 {
		t.Errorf("Error index = %d, want 1", errs.Errors[0].Index)
	}
	if !errors.Is(errs.Errors[0], errBoom) {
		t.Errorf("Expected wrapped simulated error, got %v", errs.Errors[0].Err)
	}
	if _, ok := errs.ByIndex()[1]; !ok {
		t.Error("ByIndex should contain index 1")
	}
}

func TestMapFilesIndexed_ErrorsSortedByIndex(t *testing.T) {
	tmpDir := t.TempDir()

	files := make([]string, 20)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("f%d.py", i), "x = 1\n")
	}

	_, errs := MapFilesIndexed(context.Background(), files, Options{Workers: 4}, func(p *parser.Parser, path string) (int, error) {
		return 0, errors.New("fail")
	})

	if errs == nil || len(errs.Errors) != len(files) {
		t.Fatalf("Expected %d errors, got %v", len(files), errs)
	}
	for i, e := range errs.Errors {
		if e.Index != i {
			t.Errorf("Errors[%d].Index = %d", i, e.Index)
		}
	}
}

func TestMapFilesIndexed_ParserAvailable(t *testing.T) {
	tmpDir := t.TempDir()
	file := createTestFile(t, tmpDir, "test.py", "def f(x):\n    return x\n")

	results, errs := MapFilesIndexed(context.Background(), []string{file}, Options{}, func(p *parser.Parser, path string) (bool, error) {
		if p == nil {
			return false, errors.New("nil parser")
		}
		result, err := parseFile(p, path)
		if err != nil {
			return false, err
		}
		return result.Tree.RootNode() != nil, nil
	})

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(results) != 1 || !results[0] {
		t.Error("Parser should have successfully parsed the file")
	}
}

func TestMapFilesIndexed_WithProgress(t *testing.T) {
	tmpDir := t.TempDir()

	files := make([]string, 5)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("file%d.py", i), "x = 1\n")
	}

	var progressCount atomic.Int32
	tracker := analyzer.NewTracker(len(files), func(done, total int, path string) {
		progressCount.Add(1)
	})

	ctx := analyzer.WithTracker(context.Background(), tracker)
	_, errs := MapFilesIndexed(ctx, files, Options{}, func(p *parser.Parser, path string) (int, error) {
		if filepath.Base(path) == "file3.py" {
			return 0, errors.New("fail")
		}
		return 1, nil
	})

	if errs == nil || len(errs.Errors) != 1 {
		t.Errorf("Expected 1 error, got %v", errs)
	}
	if int(progressCount.Load()) != len(files) {
		t.Errorf("Expected progress callback %d times, got %d", len(files), progressCount.Load())
	}
	if tracker.Done() != len(files) {
		t.Errorf("Tracker done = %d, want %d", tracker.Done(), len(files))
	}
	if tracker.Failed() != 1 {
		t.Errorf("Tracker failed = %d, want 1", tracker.Failed())
	}
}

func TestMapFilesIndexed_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()

	files := make([]string, 10)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("file%d.py", i), "x = 1\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Int32
	results, errs := MapFilesIndexed(ctx, files, Options{}, func(p *parser.Parser, path string) (string, error) {
		called.Add(1)
		return path, nil
	})

	if called.Load() != 0 {
		t.Errorf("fn should not run after cancellation, ran %d times", called.Load())
	}
	if len(results) != len(files) {
		t.Errorf("Expected %d result slots, got %d", len(files), len(results))
	}
	if errs == nil || len(errs.Errors) != len(files) {
		t.Fatalf("Expected %d errors, got %v", len(files), errs)
	}
	for _, e := range errs.Errors {
		if !errors.Is(e, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", e.Err)
		}
	}
}

func TestMapFilesIndexed_SizeLimit(t *testing.T) {
	tmpDir := t.TempDir()

	small := createTestFile(t, tmpDir, "small.py", "x = 1\n")
	large := createTestFile(t, tmpDir, "large.py", "x = '"+string(make([]byte, 512))+"'\n")

	t.Run("with size limit", func(t *testing.T) {
		results, errs := MapFilesIndexed(context.Background(), []string{small, large}, Options{MaxFileSize: 100}, func(p *parser.Parser, path string) (string, error) {
			return filepath.Base(path), nil
		})

		if results[0] != "small.py" || results[1] != "" {
			t.Errorf("Unexpected results: %v", results)
		}
		if errs == nil || len(errs.Errors) != 1 {
			t.Fatalf("Expected 1 error for large file, got %v", errs)
		}
		if !errors.Is(errs.Errors[0], ErrFileTooLarge) {
			t.Errorf("Expected ErrFileTooLarge, got %v", errs.Errors[0].Err)
		}
	})

	t.Run("no size limit", func(t *testing.T) {
		_, errs := MapFilesIndexed(context.Background(), []string{small, large}, Options{}, func(p *parser.Parser, path string) (string, error) {
			return filepath.Base(path), nil
		})
		if errs != nil {
			t.Errorf("Unexpected errors: %v", errs)
		}
	})

	t.Run("stat error", func(t *testing.T) {
		missing := filepath.Join(tmpDir, "missing.py")
		_, errs := MapFilesIndexed(context.Background(), []string{missing}, Options{MaxFileSize: 100}, func(p *parser.Parser, path string) (string, error) {
			return path, nil
		})
		if errs == nil || len(errs.Errors) != 1 {
			t.Errorf("Expected 1 error, got %v", errs)
		}
	})
}

func TestProcessingError(t *testing.T) {
	err := ProcessingError{Path: "/path/to/file.py", Err: fmt.Errorf("parse failed")}
	expected := "/path/to/file.py: parse failed"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}

	if errs.HasErrors() {
		t.Error("Empty ProcessingErrors should not have errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Empty error message = %q, want 'no errors'", errs.Error())
	}

	errs.add(0, "/file1.py", fmt.Errorf("error1"))
	if !errs.HasErrors() {
		t.Error("ProcessingErrors with one error should have errors")
	}
	if errs.Error() != "/file1.py: error1" {
		t.Errorf("Single error message = %q", errs.Error())
	}

	errs.add(1, "/file2.py", fmt.Errorf("error2"))
	if errMsg := errs.Error(); errMsg != "2 files failed to process (first: /file1.py: error1)" {
		t.Errorf("Multiple error message = %q", errMsg)
	}
	if errs.Unwrap() != nil {
		t.Error("Unwrap() should return nil")
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs.add(n, fmt.Sprintf("/file%d.py", n), fmt.Errorf("error %d", n))
		}(i)
	}
	wg.Wait()

	if len(errs.Errors) != 100 {
		t.Errorf("Expected 100 errors, got %d", len(errs.Errors))
	}
}

func BenchmarkMapFilesIndexed(b *testing.B) {
	tmpDir := b.TempDir()
	files := make([]string, 50)
	for i := range files {
		files[i] = createTestFile(b, tmpDir, fmt.Sprintf("file%d.py", i), "def f(x):\n    if x:\n        return 1\n    return 0\n")
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MapFilesIndexed(ctx, files, Options{}, func(p *parser.Parser, path string) (bool, error) {
			_, err := parseFile(p, path)
			return err == nil, err
		})
	}
}

func parseFile(p *parser.Parser, path string) (*parser.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(context.Background(), src, parser.DetectLanguage(path), path)
}

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return path
}
