package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chazu/collidergen/pkg/sceneio"
)

// settleDelay is how long a file must go without events before it is
// imported. Editors and exporters often write a file in several steps.
const settleDelay = 250 * time.Millisecond

// Watch imports every supported model created or written in dir until ctx
// is done. Subdirectories are not watched. Import failures are logged and
// reported through Notify; only watcher setup errors are returned.
func (p *Pipeline) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("importer: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("importer: watch %s: %w", dir, err)
	}
	log := p.logger().With("dir", dir)
	log.Info("watching for models")

	outDir, _ := filepath.Abs(p.OutputDir)
	settle := newSettler(settleDelay)
	defer settle.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !sceneio.Supported(event.Name) {
				continue
			}
			// Results written into the watched directory must not be
			// imported again.
			if d, _ := filepath.Abs(filepath.Dir(event.Name)); d == outDir {
				continue
			}
			settle.touch(ctx, event.Name)
		case ev := <-settle.ready:
			if !settle.take(ev) {
				continue
			}
			res, err := p.Import(ctx, ev.name)
			if err != nil {
				log.Error("import failed", "input", ev.name, "error", err)
			}
			if p.Notify != nil {
				p.Notify(res)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// settled is a file that went quiet, tagged with the touch that armed it.
type settled struct {
	name string
	gen  uint64
}

type settleTimer struct {
	timer *time.Timer
	gen   uint64
}

// settler debounces file events. It is owned by a single goroutine; only
// its timers run elsewhere, and they talk back through ready.
type settler struct {
	delay   time.Duration
	ready   chan settled
	pending map[string]settleTimer
	gen     uint64
}

func newSettler(delay time.Duration) *settler {
	return &settler{
		delay:   delay,
		ready:   make(chan settled),
		pending: make(map[string]settleTimer),
	}
}

// touch (re)starts the quiet period for name. A timer that already fired
// may still deliver; its generation is stale and take rejects it.
func (s *settler) touch(ctx context.Context, name string) {
	if t, ok := s.pending[name]; ok {
		t.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending[name] = settleTimer{
		gen: gen,
		timer: time.AfterFunc(s.delay, func() {
			select {
			case s.ready <- settled{name: name, gen: gen}:
			case <-ctx.Done():
			}
		}),
	}
}

// take reports whether ev is the latest touch for its file, and if so
// forgets the file.
func (s *settler) take(ev settled) bool {
	t, ok := s.pending[ev.name]
	if !ok || t.gen != ev.gen {
		return false
	}
	delete(s.pending, ev.name)
	return true
}

func (s *settler) stop() {
	for _, t := range s.pending {
		t.timer.Stop()
	}
}
