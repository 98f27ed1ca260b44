package importer

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/collidergen/pkg/kernel/sdfx"
	"github.com/chazu/collidergen/pkg/prefs"
	"github.com/chazu/collidergen/pkg/scene"
	"github.com/chazu/collidergen/pkg/sceneio"
)

const crateYAML = `
meshes:
  - name: Crate_Mesh
    box:
      size: [2, 2, 2]
  - name: Crate_Col
    box:
      size: [2, 2, 2]
root:
  name: Crate.fbx
  children:
    - name: Crate
      mesh: Crate_Mesh
      children:
        - name: UBX_Crate
          position: [0, 1, 0]
          mesh: Crate_Col
        - name: UCP_Pole
          rotation: [0, 0, 30]
          mesh: Crate_Col
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openPrefs(t *testing.T, enabled bool) *prefs.Store {
	t.Helper()
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)
	require.NoError(t, store.SetEnabled(enabled))
	return store
}

func TestImportGeneratesColliders(t *testing.T) {
	in := writeFile(t, t.TempDir(), "crate.yaml", crateYAML)
	p := &Pipeline{Prefs: openPrefs(t, true), OutputDir: t.TempDir()}

	res, err := p.Import(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, 1, res.Merged)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 1, res.Destroyed)
	assert.Equal(t, filepath.Join(p.OutputDir, "crate.yaml"), res.Output)
	assert.Empty(t, res.Preview)

	s, _, err := sceneio.Load(res.Output)
	require.NoError(t, err)
	assert.Nil(t, s.Lookup("UBX_Crate"))
	crate := s.Lookup("Crate")
	require.NotNil(t, crate)
	require.Len(t, crate.Shapes, 1)
	assert.Equal(t, scene.ShapeBox, crate.Shapes[0].Kind())

	pole := s.Lookup("UCP_Pole")
	require.NotNil(t, pole)
	assert.Equal(t, scene.NoMesh, pole.Mesh)
	require.Len(t, pole.Shapes, 1)
	assert.Equal(t, scene.ShapeCapsule, pole.Shapes[0].Kind())
}

func TestImportDisabledLeavesSceneAlone(t *testing.T) {
	in := writeFile(t, t.TempDir(), "crate.yaml", crateYAML)
	p := &Pipeline{Prefs: openPrefs(t, false), OutputDir: t.TempDir()}

	res, err := p.Import(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Merged)
	assert.Zero(t, res.Kept)

	s, _, err := sceneio.Load(res.Output)
	require.NoError(t, err)
	require.NotNil(t, s.Lookup("UBX_Crate"))
	assert.Empty(t, s.Lookup("Crate").Shapes)
}

func TestImportWithoutPrefsIsDisabled(t *testing.T) {
	in := writeFile(t, t.TempDir(), "crate.yaml", crateYAML)
	p := &Pipeline{OutputDir: t.TempDir()}

	res, err := p.Import(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, res.Merged)
}

func TestImportLispSavesYAML(t *testing.T) {
	src := `
(scene "crate"
  (node "Crate" :mesh (box-mesh "Crate_Mesh" (vec3 1 1 1))
    (node "USP_Ball" :position (vec3 0 2 0)
      :mesh (box-mesh "Ball" (vec3 1 1 1)))))
`
	in := writeFile(t, t.TempDir(), "crate.scene", src)
	p := &Pipeline{Prefs: openPrefs(t, true), OutputDir: t.TempDir()}

	res, err := p.Import(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.OutputDir, "crate.yaml"), res.Output)
	assert.Equal(t, 1, res.Merged)

	s, _, err := sceneio.Load(res.Output)
	require.NoError(t, err)
	require.Len(t, s.Lookup("Crate").Shapes, 1)
	assert.Equal(t, scene.ShapeSphere, s.Lookup("Crate").Shapes[0].Kind())
}

func TestImportPreview(t *testing.T) {
	in := writeFile(t, t.TempDir(), "crate.yaml", crateYAML)
	p := &Pipeline{
		Prefs:     openPrefs(t, true),
		Kernel:    sdfx.New(12),
		OutputDir: t.TempDir(),
		Preview:   true,
	}

	res, err := p.Import(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.OutputDir, "crate.webp"), res.Preview)

	data, err := os.ReadFile(res.Preview)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "crate.yaml", crateYAML)

	tests := []struct {
		name     string
		pipeline *Pipeline
		path     string
		ctx      func() context.Context
		contains string
	}{
		{
			name:     "no output dir",
			pipeline: &Pipeline{},
			path:     good,
			contains: "no output directory",
		},
		{
			name:     "missing file",
			pipeline: &Pipeline{OutputDir: t.TempDir()},
			path:     filepath.Join(dir, "missing.yaml"),
			contains: "missing.yaml",
		},
		{
			name:     "unsupported extension",
			pipeline: &Pipeline{OutputDir: t.TempDir()},
			path:     writeFile(t, dir, "crate.fbx", "binary"),
			contains: "unsupported file type",
		},
		{
			name:     "malformed document",
			pipeline: &Pipeline{OutputDir: t.TempDir()},
			path:     writeFile(t, dir, "bad.yaml", "root: [unclosed"),
			contains: "bad.yaml",
		},
		{
			name:     "canceled",
			pipeline: &Pipeline{OutputDir: t.TempDir()},
			path:     good,
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			contains: "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}
			res, err := tt.pipeline.Import(ctx, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.False(t, res.Success)
			assert.Equal(t, err.Error(), res.Error)
			assert.Equal(t, tt.path, res.Input)
		})
	}
}

func TestImportAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml", "d.yaml"} {
		paths = append(paths, writeFile(t, dir, name, crateYAML))
	}
	paths = append(paths, filepath.Join(dir, "missing.yaml"))

	p := &Pipeline{Prefs: openPrefs(t, true), OutputDir: t.TempDir()}
	results := p.ImportAll(context.Background(), paths, 3)

	require.Len(t, results, len(paths))
	for i, res := range results[:4] {
		assert.Equal(t, paths[i], res.Input)
		assert.True(t, res.Success, res.Error)
		assert.Equal(t, 1, res.Merged)
		assert.FileExists(t, res.Output)
	}
	assert.False(t, results[4].Success)
	assert.NotEmpty(t, results[4].Error)
}

func TestImportAllCanceled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.yaml", crateYAML),
		writeFile(t, dir, "b.yaml", crateYAML),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Pipeline{OutputDir: t.TempDir()}
	for _, res := range p.ImportAll(ctx, paths, 0) {
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "context canceled")
	}
}

func TestImportLogs(t *testing.T) {
	in := writeFile(t, t.TempDir(), "crate.yaml", crateYAML)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := &Pipeline{Prefs: openPrefs(t, true), OutputDir: t.TempDir(), Logger: logger}

	_, err := p.Import(context.Background(), in)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "model imported")
	assert.Contains(t, out, "collider pass complete")
	assert.Contains(t, out, "merged=1")
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"models/crate.yaml", "out/crate.yaml"},
		{"crate.json", "out/crate.json"},
		{"/abs/crate.scene", "out/crate.yaml"},
		{"crate.lisp", "out/crate.yaml"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.FromSlash(tt.want), outputPath("out", tt.input), tt.input)
	}
}

func TestWatchImportsNewModels(t *testing.T) {
	in := t.TempDir()
	var (
		mu   sync.Mutex
		seen []Result
	)
	p := &Pipeline{
		Prefs:     openPrefs(t, true),
		OutputDir: t.TempDir(),
		Notify: func(r Result) {
			mu.Lock()
			seen = append(seen, r)
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Watch(ctx, in) }()

	out := filepath.Join(p.OutputDir, "crate.yaml")
	// The watcher may not be registered yet when the first write lands, so
	// keep writing until the result shows up.
	require.Eventually(t, func() bool {
		if _, err := os.Stat(out); err == nil {
			return true
		}
		writeFile(t, in, "crate.yaml", crateYAML)
		return false
	}, 10*time.Second, 500*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Success, seen[0].Error)
	assert.Equal(t, 1, seen[0].Merged)
}

func TestWatchMissingDir(t *testing.T) {
	p := &Pipeline{OutputDir: t.TempDir()}
	err := p.Watch(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importer: watch")
}

func TestSettlerIgnoresTouchAfterFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newSettler(10 * time.Millisecond)
	defer s.stop()

	recv := func() settled {
		t.Helper()
		select {
		case ev := <-s.ready:
			return ev
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a settled file")
			return settled{}
		}
	}

	s.touch(ctx, "a.yaml")
	// Let the timer fire; its send now blocks on ready.
	time.Sleep(50 * time.Millisecond)
	s.touch(ctx, "a.yaml")

	first := recv()
	assert.Equal(t, "a.yaml", first.name)
	assert.False(t, s.take(first), "the send from the spent timer is stale")

	second := recv()
	assert.True(t, s.take(second))

	select {
	case ev := <-s.ready:
		t.Fatalf("unexpected extra settle for %s", ev.name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSettlerCoalescesTouches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newSettler(30 * time.Millisecond)
	defer s.stop()

	for i := 0; i < 5; i++ {
		s.touch(ctx, "b.yaml")
	}
	var got []settled
	deadline := time.After(200 * time.Millisecond)
	for done := false; !done; {
		select {
		case ev := <-s.ready:
			if s.take(ev) {
				got = append(got, ev)
			}
		case <-deadline:
			done = true
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, "b.yaml", got[0].name)
}
