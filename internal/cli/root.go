// Package cli implements the unarchive command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Defacto2/unarchive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version is set via ldflags during build
	Version = "dev"
	// Commit is set via ldflags during build
	Commit = "unknown"
)

// flags are the command-line options shared by the commands.
type flags struct {
	config    string
	debug     bool
	quiet     bool
	dirname   string
	overwrite bool
	flat      bool
	noLibrary bool
	tempDir   string
	timeout   time.Duration
	sevenZip  string
	bsdtar    string
	unrar     string
	unar      string
}

// Execute runs the root command, printing any error and exiting with its status.
// This is called by main.main().
func Execute() error {
	root := NewRoot()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(exitCode(err))
	}
	return nil
}

// NewRoot returns the root command with every subcommand attached.
func NewRoot() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "unarchive [folder]",
		Short: "Extract every archive in a folder into one directory",
		Long: `unarchive extracts the zip, tar, 7z, rar and other archives found directly
within a folder into a single "unarchived" subdirectory of that folder.

Name collisions are resolved by numbered suffixes, so existing files are never
replaced unless --overwrite is given. The 7z, rar and other formats use the
7z, bsdtar, unrar and unar programs when they are installed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := "."
			if len(args) == 1 {
				folder = args[0]
			}
			return runExtract(cmd, f, folder)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "YAML configuration file")
	pf.BoolVar(&f.debug, "debug", false, "Print the internal diagnostics to stderr")
	pf.StringVar(&f.sevenZip, "7z", "", "Path of the 7z program")
	pf.StringVar(&f.bsdtar, "bsdtar", "", "Path of the bsdtar program")
	pf.StringVar(&f.unrar, "unrar", "", "Path of the unrar program")
	pf.StringVar(&f.unar, "unar", "", "Path of the unar program")

	fs := root.Flags()
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Only print failures and the summary")
	fs.StringVarP(&f.dirname, "dirname", "d", unarchive.Dirname, "Name of the output directory")
	fs.BoolVarP(&f.overwrite, "overwrite", "o", false, "Replace existing files instead of renaming")
	fs.BoolVar(&f.flat, "flat", false, "Write every file directly into the output directory")
	fs.BoolVar(&f.noLibrary, "no-library", false, "Never use the built-in 7z and rar decoders")
	fs.StringVar(&f.tempDir, "temp", "", "Parent directory of the scratch directories")
	fs.DurationVar(&f.timeout, "timeout", 0, "Time limit of each program, 0 for none")

	root.AddCommand(toolsCmd(f))
	root.AddCommand(versionCmd())
	return root
}

// configure returns the configuration of the defaults, the configuration file,
// the environment and finally the changed command-line flags.
func configure(cmd *cobra.Command, f *flags) (unarchive.Config, error) {
	cfg, err := LoadConfig(f.config)
	if err != nil {
		return cfg, err
	}
	changed := cmd.Flags().Changed
	if changed("dirname") {
		cfg.Dirname = f.dirname
	}
	if changed("overwrite") {
		cfg.Overwrite = f.overwrite
	}
	if changed("flat") {
		cfg.Flat = f.flat
	}
	if changed("no-library") {
		cfg.NoLibrary = f.noLibrary
	}
	if changed("temp") {
		cfg.TempDir = f.tempDir
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("7z") {
		cfg.Tools.SevenZip = f.sevenZip
	}
	if changed("bsdtar") {
		cfg.Tools.Tar = f.bsdtar
	}
	if changed("unrar") {
		cfg.Tools.Unrar = f.unrar
	}
	if changed("unar") {
		cfg.Tools.Unar = f.unar
	}
	return cfg, validate(cfg)
}

// logger returns the development logger in debug mode, otherwise a no-op logger.
func logger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("debug logger: %w", err)
	}
	return l, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}

// exitCode maps the error onto the program exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, unarchive.ErrFolder), errors.Is(err, unarchive.ErrNotDir):
		return 2
	}
	return 1
}
