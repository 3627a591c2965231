package cli

import (
	"fmt"

	"github.com/Defacto2/unarchive"
	"github.com/Defacto2/unarchive/command"
	"github.com/spf13/cobra"
)

func toolsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show the archive programs that will be used",
		Long: `Locates the 7z, bsdtar, unrar and unar programs using the configured paths,
the search path and the usual install locations, then lists what was found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configure(cmd, f)
			if err != nil {
				return err
			}
			l, err := logger(f.debug)
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()
			tools := unarchive.New(cfg, unarchive.WithLogger(l)).Tools()
			w := cmd.OutOrStdout()
			for _, k := range command.Kinds() {
				path := tools.Path(k)
				if path == "" {
					path = "not found"
				}
				fmt.Fprintf(w, "%-8s %s\n", k, path)
			}
			fmt.Fprintf(w, "%-8s %s\n", "7z lib", "github.com/bodgit/sevenzip")
			fmt.Fprintf(w, "%-8s %s\n", "rar lib", "github.com/nwaples/rardecode/v2")
			return nil
		},
	}
}
