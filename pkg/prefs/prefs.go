// Package prefs persists the tool's settings, most importantly the
// "Better Collider Generation" switch, in a TOML file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where preferences live unless overridden.
const DefaultPath = "~/.collidergen/prefs.toml"

// MaxPreviewSize caps preview_size; larger values are clamped.
const MaxPreviewSize = 2048

// Prefs holds the persisted settings.
type Prefs struct {
	BetterColliderGeneration bool    `toml:"better_collider_generation"`
	RotationTolerance        float64 `toml:"rotation_tolerance"`
	MeshCells                int     `toml:"mesh_cells"`
	PreviewSize              int     `toml:"preview_size"`
	PreviewView              string  `toml:"preview_view"`
}

// Default returns the settings used when no file exists. Generation is off.
func Default() Prefs {
	return Prefs{
		BetterColliderGeneration: false,
		RotationTolerance:        0.01,
		MeshCells:                48,
		PreviewSize:              256,
		PreviewView:              "top",
	}
}

// fillDefaults replaces unset numeric and string fields, so a file written
// by hand with only the switch in it still yields usable settings. It also
// clamps the preview size.
func (p *Prefs) fillDefaults() {
	d := Default()
	if p.RotationTolerance <= 0 {
		p.RotationTolerance = d.RotationTolerance
	}
	if p.MeshCells <= 0 {
		p.MeshCells = d.MeshCells
	}
	if p.PreviewSize <= 0 {
		p.PreviewSize = d.PreviewSize
	}
	if p.PreviewSize > MaxPreviewSize {
		p.PreviewSize = MaxPreviewSize
	}
	if p.PreviewView == "" {
		p.PreviewView = d.PreviewView
	}
}

// Store is a preferences file guarded for concurrent use by host UIs and
// import workers.
type Store struct {
	mu    sync.RWMutex
	path  string
	prefs Prefs
}

// Open loads the preferences at path, expanding a leading ~. An empty path
// means DefaultPath. A missing file yields Default() and is not created
// until the first save.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("prefs: expand %s: %w", path, err)
	}

	s := &Store{path: expanded, prefs: Default()}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs: read %s: %w", expanded, err)
	}
	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("prefs: parse %s: %w", expanded, err)
	}
	p.fillDefaults()
	s.prefs = p
	return s, nil
}

// Path returns the expanded file path.
func (s *Store) Path() string {
	return s.path
}

// Prefs returns a copy of the current settings.
func (s *Store) Prefs() Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Enabled reports whether collider generation is switched on.
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.BetterColliderGeneration
}

// SetEnabled sets the switch and saves the file. On a failed save the
// switch keeps its previous value.
func (s *Store) SetEnabled(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.prefs
	next.BetterColliderGeneration = on
	return s.saveLocked(next)
}

// Toggle flips the switch, saves, and returns the switch's value afterwards,
// which is the old value when the save fails.
func (s *Store) Toggle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.prefs
	next.BetterColliderGeneration = !next.BetterColliderGeneration
	err := s.saveLocked(next)
	return s.prefs.BetterColliderGeneration, err
}

// Update replaces all settings and saves them.
func (s *Store) Update(p Prefs) error {
	p.fillDefaults()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(p)
}

// saveLocked writes p and adopts it only once the write succeeded.
func (s *Store) saveLocked(p Prefs) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("prefs: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("prefs: write %s: %w", s.path, err)
	}
	s.prefs = p
	return nil
}
