package cli

import (
	"os"

	"github.com/Defacto2/unarchive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runExtract(cmd *cobra.Command, f *flags, folder string) error {
	cfg, err := configure(cmd, f)
	if err != nil {
		return err
	}
	l, err := logger(f.debug)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	x := unarchive.New(cfg, unarchive.WithLogger(l))
	p := newPrinter(cmd.OutOrStdout(), f.quiet)
	bar := newBar(cmd.ErrOrStderr(), !f.quiet && isTerminal(os.Stderr))
	defer bar.finish()

	sum, err := x.Run(cmd.Context(), folder, bar.set, func(line string) {
		bar.clear()
		p.line(line)
	})
	if err != nil {
		return err
	}
	l.Debug("extracted", zap.String("destination", sum.Destination),
		zap.Int("succeeded", sum.Succeeded), zap.Int("failed", sum.Failed))
	return nil
}
