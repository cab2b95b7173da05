package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"asmexplorer/internal/cache"
	"asmexplorer/internal/disasm"
	"asmexplorer/internal/elfx"
	"asmexplorer/internal/explorer"
	"asmexplorer/internal/symbols"
)

// errDryRun stops a command after --dry-run printed the disassembler command.
var errDryRun = errors.New("dry run")

// loaded is the outcome of loading the command's input file.
type loaded struct {
	tree   *disasm.Tree
	source string
	info   *elfx.Info // nil for captured listings
}

// withTree adapts a command body that needs the loaded input file, always
// args[0].
func (a *app) withTree(fn func(cmd *cobra.Command, args []string, res *loaded) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		res, err := a.load(cmd, args[0])
		if errors.Is(err, errDryRun) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(cmd, args, res); err != nil {
			return err
		}
		if a.cfg.Display.Demangle {
			names, hits := symbols.CacheStats()
			slog.Debug("Demangle cache", "names", names, "hits", hits)
		}
		return nil
	}
}

// load disassembles file, or parses it as a captured listing with --input.
func (a *app) load(cmd *cobra.Command, file string) (*loaded, error) {
	ctx := cmd.Context()

	if a.flags.input {
		r, name, closeFn, err := openInput(cmd, file)
		if err != nil {
			return nil, err
		}
		defer closeFn()

		sess := explorer.New(explorer.Options{})
		if err := sess.LoadReader(ctx, name, r); err != nil {
			return nil, err
		}
		tree, source, err := sess.Current()
		if err != nil {
			return nil, err
		}
		return &loaded{tree: tree, source: source}, nil
	}

	info, err := elfx.Describe(file)
	if err != nil {
		return nil, err
	}
	if info.Kind == "unknown" {
		slog.Debug("Not an ELF file, passing it to the disassembler anyway", "file", file)
	}

	runner := a.cfg.Runner()
	if a.flags.dryRun {
		path, err := runner.Resolve()
		if err != nil {
			return nil, err
		}
		runner.Path = path
		fmt.Fprintln(cmd.OutOrStdout(), runner.CommandLine(file))
		return nil, errDryRun
	}
	slog.Debug("Running disassembler", "command", runner.CommandLine(file))

	if isTerminal(cmd.ErrOrStderr()) {
		bar := newProgress(cmd.ErrOrStderr())
		runner.Progress = bar
		defer bar.Finish()
	}

	opts := explorer.Options{Runner: runner}
	if a.cfg.Cache.Enabled {
		store, err := cache.Open(a.cfg.CachePath())
		if err != nil {
			slog.Warn("Cache unavailable", "path", a.cfg.CachePath(), "error", err)
		} else {
			defer store.Close()
			opts.Cache = store
		}
	}

	sess := explorer.New(opts)
	if err := sess.Load(ctx, file); err != nil {
		return nil, err
	}
	tree, source, err := sess.Current()
	if err != nil {
		return nil, err
	}
	return &loaded{tree: tree, source: source, info: info}, nil
}

// openInput opens a captured listing; "-" is standard input.
func openInput(cmd *cobra.Command, file string) (io.Reader, string, func(), error) {
	if file == "-" {
		return cmd.InOrStdin(), "<stdin>", func() {}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open listing: %w", err)
	}
	return f, file, func() { f.Close() }, nil
}

// newProgress shows a byte counting spinner while the disassembler runs.
func newProgress(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Disassembling"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
