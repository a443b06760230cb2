package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/wspack/internal/config"
	"github.com/danieljhkim/wspack/internal/engine"
)

func newCleanCmd(g *globalFlags) *cobra.Command {
	var flags config.CleanOptions

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove packed archives and restore package.json",
		Long: `Undo a build in the current directory.

The local modules directory is removed and package_original.json is moved back
to package.json. Running clean on a directory that was never built only removes
the local modules directory, when present.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("localModulesDirectory") {
				flags.LocalModulesDirectory = ""
			}
			opts, err := config.ResolveClean(cwd, flags)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			// Clean never packs.
			eng := newEngine("", reporterFor(g, p))
			result, err := eng.Clean(cmd.Context(), &engine.CleanRequest{
				CWD:     cwd,
				Options: opts,
			})
			if err != nil {
				return err
			}

			if g.json {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			if result.AlreadyClean {
				p.Warn("No original package.json found. Directory is clean.")
				return nil
			}
			p.Success("Cleaned!")
			return nil
		},
	}

	cleanCmd.Flags().StringVarP(&flags.LocalModulesDirectory, "localModulesDirectory", "l", config.DefaultLocalModulesDirectory, "The directory the local modules were stored in")

	return cleanCmd
}
