package processor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arobrien/nbstripout/internal/logger"
)

const sampleNotebook = `{
 "cells": [
  {
   "cell_type": "code",
   "execution_count": 3,
   "metadata": {},
   "outputs": [
    {
     "data": {"text/plain": "2"},
     "execution_count": 3,
     "output_type": "execute_result"
    }
   ],
   "source": ["1+1"]
  }
 ],
 "metadata": {},
 "nbformat": 4,
 "nbformat_minor": 5
}
`

const sampleZeppelin = `{
  "name": "note",
  "paragraphs": [
    {"text": "%md hi", "results": {"code": "SUCCESS"}}
  ]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	t.Run("empty mode defaults to jupyter", func(t *testing.T) {
		p := newProcessor(t, Config{})
		if p.cfg.Mode != ModeJupyter {
			t.Errorf("expected jupyter default, got %q", p.cfg.Mode)
		}
	})

	t.Run("invalid mode rejected", func(t *testing.T) {
		if _, err := New(Config{Mode: "databricks"}); err == nil {
			t.Fatal("expected validation error for unknown mode")
		}
	})
}

func TestShouldProcess(t *testing.T) {
	p := newProcessor(t, Config{})
	if !p.ShouldProcess("a.ipynb") || !p.ShouldProcess("b.zpln") {
		t.Error("notebook extensions should always be processed")
	}
	if p.ShouldProcess("a.ipynb.bak") {
		t.Error("foreign extensions should be skipped without force")
	}

	forced := newProcessor(t, Config{Force: true})
	if !forced.ShouldProcess("a.ipynb.bak") {
		t.Error("force should process any file")
	}
}

func TestProcessFile(t *testing.T) {
	t.Run("strips jupyter in place", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "nb.ipynb", sampleNotebook)
		p := newProcessor(t, Config{})

		if err := p.ProcessFile(path); err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}

		data, _ := os.ReadFile(path)
		content := string(data)
		if strings.Contains(content, "execute_result") {
			t.Error("outputs should be stripped")
		}
		if !strings.Contains(content, `"execution_count": null`) {
			t.Error("execution count should be nulled")
		}
		if !strings.Contains(content, "1+1") {
			t.Error("source should survive")
		}
	})

	t.Run("strips zeppelin by extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "note.zpln", sampleZeppelin)
		p := newProcessor(t, Config{})

		if err := p.ProcessFile(path); err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}

		data, _ := os.ReadFile(path)
		if strings.Contains(string(data), "SUCCESS") {
			t.Error("zeppelin results should be cleared")
		}
		if !strings.Contains(string(data), `"results": {}`) {
			t.Errorf("results should be an empty mapping, got %s", data)
		}
	})

	t.Run("skips foreign extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "nb.txt", sampleNotebook)
		p := newProcessor(t, Config{})

		if err := p.ProcessFile(path); err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != sampleNotebook {
			t.Error("skipped file must be untouched")
		}
	})

	t.Run("force processes foreign extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "nb.txt", sampleNotebook)
		p := newProcessor(t, Config{Force: true})

		if err := p.ProcessFile(path); err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}
		data, _ := os.ReadFile(path)
		if strings.Contains(string(data), "execute_result") {
			t.Error("forced file should be stripped")
		}
	})

	t.Run("dry run leaves file alone", func(t *testing.T) {
		var log bytes.Buffer
		logger.Init(logger.Options{Output: &log})
		defer logger.Init(logger.Options{})

		path := writeFile(t, t.TempDir(), "nb.ipynb", sampleNotebook)
		p := newProcessor(t, Config{DryRun: true})

		if err := p.ProcessFile(path); err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != sampleNotebook {
			t.Error("dry run must not modify the file")
		}
		if !strings.Contains(log.String(), "would have stripped") {
			t.Error("dry run should report the file")
		}
	})

	t.Run("textconv writes to stdout not the file", func(t *testing.T) {
		var stdout bytes.Buffer
		path := writeFile(t, t.TempDir(), "nb.ipynb", sampleNotebook)
		p := newProcessor(t, Config{Textconv: true, Stdout: &stdout})

		if err := p.ProcessFile(path); err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != sampleNotebook {
			t.Error("textconv must not modify the file")
		}
		if !strings.Contains(stdout.String(), `"execution_count": null`) {
			t.Error("stripped document should be on stdout")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		p := newProcessor(t, Config{})
		err := p.ProcessFile(filepath.Join(t.TempDir(), "absent.ipynb"))
		if err == nil || !strings.Contains(err.Error(), "file not found") {
			t.Fatalf("expected file-not-found error, got %v", err)
		}
	})

	t.Run("invalid notebook", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.ipynb", "not json")
		p := newProcessor(t, Config{})
		err := p.ProcessFile(path)
		if err == nil || !strings.Contains(err.Error(), "not a valid notebook") {
			t.Fatalf("expected invalid-notebook error, got %v", err)
		}
	})
}

func TestProcessStream(t *testing.T) {
	t.Run("jupyter", func(t *testing.T) {
		var out bytes.Buffer
		p := newProcessor(t, Config{})

		if err := p.ProcessStream(strings.NewReader(sampleNotebook), &out); err != nil {
			t.Fatalf("ProcessStream: %v", err)
		}
		if strings.Contains(out.String(), "execute_result") {
			t.Error("outputs should be stripped")
		}
		if !strings.HasSuffix(out.String(), "\n") {
			t.Error("output should end with a newline")
		}
	})

	t.Run("zeppelin mode", func(t *testing.T) {
		var out bytes.Buffer
		p := newProcessor(t, Config{Mode: ModeZeppelin})

		if err := p.ProcessStream(strings.NewReader(sampleZeppelin), &out); err != nil {
			t.Fatalf("ProcessStream: %v", err)
		}
		if strings.Contains(out.String(), "SUCCESS") {
			t.Error("zeppelin results should be cleared")
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		p := newProcessor(t, Config{})
		err := p.ProcessStream(strings.NewReader("nope"), &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "no valid notebook") {
			t.Fatalf("expected invalid-notebook error, got %v", err)
		}
	})

	t.Run("dry run produces no output", func(t *testing.T) {
		logger.Init(logger.Options{Output: &bytes.Buffer{}})
		defer logger.Init(logger.Options{})

		var out bytes.Buffer
		p := newProcessor(t, Config{DryRun: true})
		if err := p.ProcessStream(strings.NewReader(sampleNotebook), &out); err != nil {
			t.Fatal(err)
		}
		if out.Len() != 0 {
			t.Error("dry run should write nothing to stdout")
		}
	})
}
