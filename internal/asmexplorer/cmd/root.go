package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"asmexplorer/internal/asmexplorer/log"
	"asmexplorer/internal/asmexplorer/styles"
	"asmexplorer/internal/config"
	"asmexplorer/internal/listing"
	"asmexplorer/internal/ui/browser"
	"asmexplorer/internal/ui/colorize"
)

// flags holds the persistent flag values of one command tree.
type flags struct {
	configPath string
	objdump    string
	dataDir    string
	noCache    bool
	demangle   bool
	bytes      bool
	input      bool
	debug      bool
	noColor    bool
	noTUI      bool
	dryRun     bool
}

// app is shared by the root command and its subcommands.
type app struct {
	flags flags
	cfg   *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "asmexplorer [file]",
		Short: "Browse objdump disassembly by section and function",
		Long: `asmexplorer runs objdump on a binary, groups the listing into sections
and functions, and lets you browse it. With --input the file is read as
already captured disassembler output instead.`,
		Example: `
# Browse a binary
asmexplorer ./a.out

# Print a summary without the browser
asmexplorer ./a.out | cat

# Browse a captured listing
objdump -d -C ./a.out | asmexplorer --input -
  `,
		Args:              cobra.ExactArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.withTree(a.runRoot),
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/asmexplorer/config.yaml)")
	pf.StringVar(&a.flags.objdump, "objdump", "", "Disassembler to run (default is objdump)")
	pf.StringVarP(&a.flags.dataDir, "data-dir", "D", "", "Directory for the output cache")
	pf.BoolVar(&a.flags.noCache, "no-cache", false, "Always run the disassembler")
	pf.BoolVar(&a.flags.demangle, "demangle", false, "Demangle names the disassembler left mangled")
	pf.BoolVarP(&a.flags.input, "input", "i", false, "Read the file as captured disassembler output (- for stdin)")
	pf.BoolVarP(&a.flags.bytes, "bytes", "b", false, "Show the raw encoding column")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable syntax highlighting")
	pf.BoolVarP(&a.flags.debug, "debug", "d", false, "Debug")
	pf.BoolVar(&a.flags.dryRun, "dry-run", false, "Print the disassembler command instead of running it")
	rootCmd.Flags().BoolVarP(&a.flags.noTUI, "no-tui", "n", false, "Show summary without TUI")

	rootCmd.AddCommand(
		a.sectionsCmd(),
		a.functionsCmd(),
		a.showCmd(),
		a.dumpCmd(),
		a.cacheCmd(),
		schemaCmd(),
	)
	return rootCmd
}

// setup resolves configuration: defaults, config file, environment, then
// flags.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	f := cmd.Flags()
	if f.Changed("objdump") {
		cfg.Objdump.Path = a.flags.objdump
	}
	if f.Changed("data-dir") {
		cfg.Cache.Dir = a.flags.dataDir
	}
	if a.flags.noCache {
		cfg.Cache.Enabled = false
	}
	if a.flags.demangle {
		cfg.Display.Demangle = true
	}
	if a.flags.noColor || colorize.Disabled() {
		cfg.Display.NoColor = true
	}
	if f.Changed("bytes") {
		cfg.Display.Bytes = a.flags.bytes
	}

	log.Setup(cfg.Logging.Level, a.flags.debug)
	a.cfg = cfg
	return nil
}

// listingOptions derives listing options for output going to w.
func (a *app) listingOptions(w io.Writer) listing.Options {
	return listing.Options{
		Bytes:    a.cfg.Display.Bytes,
		Demangle: a.cfg.Display.Demangle,
		Color:    !a.cfg.Display.NoColor && isTerminal(w),
	}
}

func (a *app) runRoot(cmd *cobra.Command, args []string, res *loaded) error {
	out := cmd.OutOrStdout()
	if a.flags.noTUI || !isTerminal(out) {
		return printSummary(out, listing.Summary(res.source, res.info, res.tree))
	}

	return browser.Run(cmd.Context(), res.tree, browser.Options{
		Source:  res.source,
		Listing: a.listingOptions(out),
	})
}

// printSummary renders the summary markdown for a terminal, or writes it
// as is.
func printSummary(w io.Writer, md string) error {
	if isTerminal(w) {
		width := 80
		if f, ok := w.(*os.File); ok {
			if tw, _, err := term.GetSize(f.Fd()); err == nil && tw > 0 {
				width = tw
			}
		}
		md = styles.RenderMarkdown(md, width)
	}
	_, err := fmt.Fprint(w, md)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func Execute() {
	os.Exit(run(newRootCmd()))
}

// closeLog flushes the log file, if any, before the process exits.
var closeLog = log.Close

// run executes rootCmd and returns the process exit code.
func run(rootCmd *cobra.Command) int {
	defer closeLog()
	if err := execute(rootCmd); err != nil {
		return 1
	}
	return 0
}

func execute(rootCmd *cobra.Command) error {
	// fang renders help and errors as styled markdown; bypass it when the
	// output is piped.
	if !term.IsTerminal(os.Stdout.Fd()) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return rootCmd.ExecuteContext(ctx)
	}

	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	)
}
