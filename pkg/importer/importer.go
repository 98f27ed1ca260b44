// Package importer runs the import hook over model files: load, generate
// collision proxies, save the result and optionally render a preview.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chazu/collidergen/pkg/collider"
	"github.com/chazu/collidergen/pkg/kernel"
	"github.com/chazu/collidergen/pkg/kernel/sdfx"
	"github.com/chazu/collidergen/pkg/prefs"
	"github.com/chazu/collidergen/pkg/preview"
	"github.com/chazu/collidergen/pkg/scene"
	"github.com/chazu/collidergen/pkg/sceneio"
	"github.com/chazu/collidergen/pkg/tessellate"
)

// progressInterval is how often ImportAll logs throughput.
const progressInterval = 2 * time.Second

// Pipeline holds the shared resources for importing models.
type Pipeline struct {
	Prefs     *prefs.Store
	Generator *collider.Generator // nil builds one gated by Prefs
	Kernel    kernel.Kernel       // nil uses sdfx with the prefs cell count
	OutputDir string
	Preview   bool
	Logger    *slog.Logger
	// Notify, if set, receives every result produced by Watch.
	Notify func(Result)
}

// Result holds the outcome of importing one model.
type Result struct {
	Input     string
	Output    string
	Preview   string
	Merged    int
	Kept      int
	Destroyed int
	Warnings  int
	Success   bool
	Error     string
	Duration  time.Duration
}

// Import processes a single model file. The generator runs only when the
// prefs switch is on; the scene is saved either way.
func (p *Pipeline) Import(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res := Result{Input: path}
	fail := func(err error) (Result, error) {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if p.OutputDir == "" {
		return fail(errors.New("importer: no output directory"))
	}
	log := p.logger().With("input", path)

	s, issues, err := sceneio.Load(path)
	if err != nil {
		return fail(err)
	}
	for _, v := range issues {
		log.Warn("scene warning", "node", v.Node, "message", v.Message)
	}
	res.Warnings = len(issues)

	report := p.generator().PostprocessModel(s)
	res.Merged = report.Count(collider.ActionMerged)
	res.Kept = report.Count(collider.ActionKept)
	res.Destroyed = report.Destroyed

	res.Output = outputPath(p.OutputDir, path)
	if err := sceneio.Save(s, res.Output); err != nil {
		return fail(err)
	}

	if p.Preview {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		res.Preview = strings.TrimSuffix(res.Output, filepath.Ext(res.Output)) + ".webp"
		if err := p.renderPreview(s, res.Preview); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	res.Duration = time.Since(start)
	log.Info("model imported",
		"output", res.Output,
		"merged", res.Merged,
		"kept", res.Kept,
		"duration", res.Duration)
	return res, nil
}

// ImportAll processes paths using a pool of workers. Each model is handled
// start to finish by one worker. Results are in input order.
func (p *Pipeline) ImportAll(ctx context.Context, paths []string, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64
	log := p.logger()

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n := processed.Load()
				if n > 0 {
					rate := float64(n) / time.Since(start).Seconds()
					log.Info("import progress", "done", n, "total", total,
						"rate", fmt.Sprintf("%.1f/s", rate))
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], _ = p.Import(ctx, paths[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func (p *Pipeline) renderPreview(s *scene.Scene, path string) error {
	meshes, err := tessellate.Tessellate(s, p.kernel())
	if err != nil {
		return fmt.Errorf("importer: tessellate: %w", err)
	}
	img := preview.Render(meshes, p.previewOptions())

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	if err := preview.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (p *Pipeline) previewOptions() preview.Options {
	opts := preview.DefaultOptions()
	if p.Prefs == nil {
		return opts
	}
	cfg := p.Prefs.Prefs()
	opts.Size = cfg.PreviewSize
	if v, err := preview.ParseView(cfg.PreviewView); err == nil {
		opts.View = v
	} else {
		p.logger().Warn("ignoring preview view", "error", err)
	}
	return opts
}

func (p *Pipeline) generator() *collider.Generator {
	if p.Generator != nil {
		return p.Generator
	}
	g := &collider.Generator{Logger: p.Logger}
	if p.Prefs != nil {
		g.Toggle = p.Prefs
		g.RotationTolerance = p.Prefs.Prefs().RotationTolerance
	}
	return g
}

func (p *Pipeline) kernel() kernel.Kernel {
	if p.Kernel != nil {
		return p.Kernel
	}
	cells := 0
	if p.Prefs != nil {
		cells = p.Prefs.Prefs().MeshCells
	}
	return sdfx.New(cells)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// outputPath maps an input model to its processed file in dir. DSL sources
// cannot be written back and are saved as YAML.
func outputPath(dir, input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if f, err := sceneio.FormatFromPath(input); err == nil && f == sceneio.FormatLisp {
		ext = sceneio.FormatYAML.Ext()
	}
	return filepath.Join(dir, stem+ext)
}
