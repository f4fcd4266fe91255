// Package output writes parse results as JSON files.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/scoregest/internal/protocol"
)

// Path returns <dir>/<pdf-stem>.json.
func Path(dir, pdfName string) string {
	base := filepath.Base(pdfName)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".json")
}

// Write encodes res as indented JSON.
func Write(w io.Writer, res *protocol.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode %s: %w", res.PDF, err)
	}
	return nil
}

// WriteFile writes res to Path(dir, res.PDF), creating dir as needed. The
// file is replaced atomically so an interrupted run never leaves a
// truncated result behind.
func WriteFile(dir string, res *protocol.Result) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path = Path(dir, res.PDF)

	tmp, err := os.CreateTemp(dir, ".scoregest-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, res); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename to %s: %w", path, err)
	}
	return path, nil
}

// ReadFile loads a result written by WriteFile.
func ReadFile(path string) (*protocol.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res protocol.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if res.PDF == "" {
		return nil, errors.New("decode " + path + ": missing pdf name")
	}
	return &res, nil
}
