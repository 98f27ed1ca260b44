package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/chazu/collidergen/pkg/collider"
	"github.com/chazu/collidergen/pkg/importer"
	"github.com/chazu/collidergen/pkg/prefs"
	"github.com/chazu/collidergen/pkg/sceneio"
)

// cli holds flag values shared by all subcommands.
type cli struct {
	prefsPath string
	verbose   bool

	out     string
	workers int
	preview bool
	force   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "collidergen",
		Short:        "Generate collision proxies from ubx_/ucp_/usp_/ucx_/umc_ marker nodes",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.prefsPath, "prefs", prefs.DefaultPath, "preferences file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every generated collider")

	root.AddCommand(
		newProcessCmd(c),
		newWatchCmd(c),
		newToggleCmd(c),
		newStatusCmd(c),
	)
	return root
}

// addPipelineFlags registers the flags shared by process and watch.
func (c *cli) addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.out, "out", "o", "collidergen-out", "output directory")
	cmd.Flags().BoolVar(&c.preview, "preview", false, "write a WebP preview next to each output")
	cmd.Flags().BoolVarP(&c.force, "force", "f", false, "generate colliders even when the preference is off")
}

func (c *cli) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c *cli) openPrefs() (*prefs.Store, error) {
	return prefs.Open(c.prefsPath)
}

// pipeline builds an import pipeline from the prefs file and flags. --force
// overrides the stored switch for this run only.
func (c *cli) pipeline(cmd *cobra.Command) (*importer.Pipeline, error) {
	store, err := c.openPrefs()
	if err != nil {
		return nil, err
	}
	log := c.logger(cmd.ErrOrStderr())
	p := &importer.Pipeline{
		Prefs:     store,
		OutputDir: c.out,
		Preview:   c.preview,
		Logger:    log,
	}
	if c.force {
		p.Generator = &collider.Generator{
			Toggle:            forced{},
			RotationTolerance: store.Prefs().RotationTolerance,
			Logger:            log,
		}
	}
	return p, nil
}

type forced struct{}

func (forced) Enabled() bool { return true }

// expandInputs replaces directory arguments with the supported scene files
// directly inside them.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && sceneio.Supported(e.Name()) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// printer writes coloured status lines. Colour is dropped automatically when
// the destination is not a terminal.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer) *printer {
	return &printer{out: termenv.NewOutput(w)}
}

func (p *printer) ok(format string, args ...any) {
	p.line("2", "ok  ", fmt.Sprintf(format, args...))
}

func (p *printer) fail(format string, args ...any) {
	p.line("1", "FAIL", fmt.Sprintf(format, args...))
}

func (p *printer) info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) line(color, tag, msg string) {
	label := p.out.String(tag).Foreground(p.out.Color(color)).Bold()
	fmt.Fprintf(p.out, "%s %s\n", label, msg)
}

func (p *printer) result(r importer.Result) {
	if !r.Success {
		p.fail("%s: %s", r.Input, r.Error)
		return
	}
	p.ok("%s -> %s (merged %d, kept %d, destroyed %d)",
		r.Input, r.Output, r.Merged, r.Kept, r.Destroyed)
	if r.Preview != "" {
		p.info("     preview %s", r.Preview)
	}
}

func (p *printer) enabled(on bool) string {
	if on {
		return p.out.String("on").Foreground(p.out.Color("2")).String()
	}
	return p.out.String("off").Foreground(p.out.Color("3")).String()
}
