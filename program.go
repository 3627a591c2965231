package unarchive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/Defacto2/unarchive/command"
	"go.uber.org/zap"
)

// Package file program.go contains the external program invocation and the fallback chains.

// step is one extraction attempt of a fallback chain.
type step struct {
	name string
	run  func() (int, int64, error)
}

// chain runs the steps in order until one succeeds. The failures of the
// earlier steps are discarded on success, otherwise all of them are returned.
// A filesystem error stops the chain as the destination itself is unusable.
func (x *Extractor) chain(name string, steps []step) (int, int64, error) {
	errs := make([]error, 0, len(steps))
	var files int
	var written int64
	for _, s := range steps {
		var err error
		files, written, err = s.run()
		if err == nil {
			return files, written, nil
		}
		x.log.Debug("extraction step failed", zap.String("archive", name),
			zap.String("step", s.name), zap.Error(err))
		errs = append(errs, err)
		if errors.Is(err, ErrFS) {
			return files, written, errors.Join(errs...)
		}
	}
	return files, written, errors.Join(errs...)
}

// programs returns a chain step for each of the located programs of the kinds.
func (x *Extractor) programs(ctx context.Context, src, dst string, kinds ...command.Kind) []step {
	tools := x.Tools()
	steps := make([]step, 0, len(kinds))
	for _, k := range kinds {
		prog := tools.Path(k)
		if prog == "" {
			continue
		}
		steps = append(steps, step{
			name: k.String(),
			run: func() (int, int64, error) {
				return x.Program(ctx, k, prog, src, dst)
			},
		})
	}
	return steps
}

// Program extracts the src archive with the external program of the kind into a scratch
// directory, which is flattened into dst and then removed, even on failure.
// It returns the number of files and bytes moved into dst.
//
// The program is run non-interactively, overwriting within the scratch directory.
// A non-zero exit status is a [ToolError], except for the warning status of unrar
// where whatever was extracted is kept.
func (x *Extractor) Program(ctx context.Context, k command.Kind, prog, src, dst string) (int, int64, error) {
	scratch, err := os.MkdirTemp(x.cfg.TempDir, "unarchive_"+k.String()+"_")
	if err != nil {
		return 0, 0, fmt.Errorf("%s scratch %w: %w", k, ErrFS, err)
	}
	defer os.RemoveAll(scratch)

	if x.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.cfg.Timeout)
		defer cancel()
	}
	args := Args(k, src, scratch)
	var b bytes.Buffer
	cmd := exec.CommandContext(ctx, prog, args...)
	cmd.Stdout = &b
	cmd.Stderr = &b
	x.log.Debug("run program", zap.String("prog", prog), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		code := command.ExitCode(err)
		if !command.Soft(k, code) {
			return 0, 0, &ToolError{Tool: k.String(), Prog: prog, Code: code, Output: b.String()}
		}
		x.log.Warn("program warning", zap.String("prog", prog), zap.Int("code", code),
			zap.String("output", b.String()))
	}
	return x.namer.Flatten(scratch, dst)
}

// Args returns the program arguments to extract the src archive into the scratch directory.
func Args(k command.Kind, src, scratch string) []string {
	switch k {
	case command.SevenZip:
		const (
			extract   = "x"    // x extract files with full paths
			overwrite = "-aoa" // -aoa overwrite all
			quiet     = "-bb0" // -bb0 quiet
			yes       = "-y"   // -y assume yes to all queries
			targetDir = "-o"   // -o output directory
		)
		return []string{extract, overwrite, quiet, yes, targetDir + scratch, src}
	case command.Libarchive:
		// note: BSD tar uses different flags to GNU tar
		const (
			extract   = "-x"                    // -x extract files
			source    = "--file"                // -f file path to extract
			targetDir = "--cd"                  // -C target directory
			noOwner   = "--no-same-owner"       // --no-same-owner
			noPerms   = "--no-same-permissions" // --no-same-permissions
		)
		return []string{extract, source, src, noOwner, noPerms, targetDir, scratch}
	case command.UnrarTool:
		const (
			extract    = "x"   // x extract files with full path
			overwrite  = "-o+" // -o+ overwrite existing files
			noComments = "-c-" // -c- do not display comments
			yes        = "-y"  // -y assume yes to all queries
		)
		// unrar treats the destination as a directory only with a trailing separator
		return []string{extract, overwrite, noComments, yes, src, scratch + string(os.PathSeparator)}
	case command.Unarchiver:
		const (
			quiet     = "-quiet"
			overwrite = "-force-overwrite"
			targetDir = "-output-directory"
		)
		return []string{quiet, overwrite, targetDir, scratch, src}
	}
	return nil
}
