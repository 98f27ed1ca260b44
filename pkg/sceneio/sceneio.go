// Package sceneio loads and saves scenes. YAML and JSON documents are read
// and written; .scene files are Lisp scene descriptions evaluated by the
// engine and can only be read.
package sceneio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/collidergen/pkg/engine"
	"github.com/chazu/collidergen/pkg/scene"
)

// Format identifies a scene file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatLisp
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatLisp:
		return "lisp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the canonical file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatLisp:
		return ".scene"
	default:
		return ".yaml"
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".scene", ".lisp":
		return FormatLisp, nil
	}
	return 0, fmt.Errorf("sceneio: unsupported file type %q", filepath.Ext(path))
}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// Decode reads a scene in the given format. The result is not validated.
func Decode(r io.Reader, f Format) (*scene.Scene, error) {
	if f == FormatLisp {
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("sceneio: read: %w", err)
		}
		// A fresh engine per call: evaluations on a shared engine supersede
		// each other.
		s, evalErrs, err := engine.NewEngine().Evaluate(string(src))
		if err != nil {
			return nil, fmt.Errorf("sceneio: evaluate: %w", err)
		}
		if len(evalErrs) > 0 {
			errs := make([]error, len(evalErrs))
			for i, e := range evalErrs {
				errs[i] = e
			}
			return nil, fmt.Errorf("sceneio: evaluate: %w", errors.Join(errs...))
		}
		return s, nil
	}

	var doc Document
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sceneio: decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("sceneio: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("sceneio: cannot decode %s", f)
	}

	s, err := doc.ToScene()
	if err != nil {
		return nil, fmt.Errorf("sceneio: %w", err)
	}
	return s, nil
}

// Encode writes the live part of s in the given format.
func Encode(w io.Writer, s *scene.Scene, f Format) error {
	doc := FromScene(s)
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("sceneio: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("sceneio: encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("sceneio: cannot encode %s", f)
}

// Load reads and validates the scene at path. Validation warnings are
// returned alongside the scene; validation errors fail the load.
func Load(path string) (*scene.Scene, []scene.ValidationError, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("sceneio: %w", err)
	}
	defer file.Close()

	s, err := Decode(file, f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	issues := scene.Validate(s)
	if scene.HasErrors(issues) {
		var errs []error
		for _, v := range issues {
			if v.Severity == scene.SeverityError {
				errs = append(errs, v)
			}
		}
		return nil, issues, fmt.Errorf("sceneio: %s: invalid scene: %w", path, errors.Join(errs...))
	}
	return s, issues, nil
}

// Save writes s to path, choosing the format from the extension. Parent
// directories are created as needed.
func Save(s *scene.Scene, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == FormatLisp {
		return fmt.Errorf("sceneio: cannot save %s files", f)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("sceneio: create dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sceneio: %w", err)
	}
	if err := Encode(file, s, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
