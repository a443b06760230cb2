package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/wspack/internal/config"
	"github.com/danieljhkim/wspack/internal/engine"
)

func newBuildCmd(g *globalFlags) *cobra.Command {
	defaults := config.DefaultBuildOptions()
	flags := defaults

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Pack workspace dependencies and rewrite package.json",
		Long: `Pack every workspace dependency of the package in the current directory.

Each dependency whose version contains the workspace indicator is located under
the workspaces root, packed with the package manager into the local modules
directory and referenced from package.json as a file: dependency. The original
package.json is kept as package_original.json until clean is run.

Options can also be set in .wspack.yaml; flags win over the file.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}

			opts, err := config.ResolveBuild(cwd, changedBuildOptions(cmd, flags))
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			eng := newEngine(opts.Packager, reporterFor(g, p))
			result, err := eng.Build(cmd.Context(), &engine.BuildRequest{
				CWD:     cwd,
				Options: opts,
			})
			if err != nil {
				return err
			}

			if g.json {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			if len(result.Packed) > 0 {
				refs := make([]string, 0, len(result.Packed))
				for _, pd := range result.Packed {
					refs = append(refs, pd.Name+" -> "+pd.Reference)
				}
				p.List(refs, 1)
			}
			p.Success("Wrote out package.json. Ready for deployment!")
			return nil
		},
	}

	f := buildCmd.Flags()
	f.StringVarP(&flags.LocalModulesDirectory, "localModulesDirectory", "l", defaults.LocalModulesDirectory, "The directory to store the local modules in")
	f.StringVarP(&flags.WorkspaceIndicator, "workspaceIndicator", "w", defaults.WorkspaceIndicator, "The prefix that identifies a workspace dependency")
	f.StringVarP(&flags.CwdFromModule, "cwdFromModule", "c", defaults.CwdFromModule, "The path from a dependency's folder back to this package")
	f.StringVarP(&flags.WorkspacesRoot, "workspacesRoot", "r", defaults.WorkspacesRoot, "The folder that contains the workspace packages")
	f.StringVarP(&flags.Packager, "packager", "p", defaults.Packager, "The package manager used to pack dependencies (env "+config.EnvPackager+")")
	f.StringSliceVarP(&flags.Exclude, "exclude", "x", defaults.Exclude, "Glob patterns of folder names under the workspaces root to skip")
	f.IntVarP(&flags.Jobs, "jobs", "j", defaults.Jobs, "Maximum concurrent pack processes (0 = unlimited)")

	return buildCmd
}

// changedBuildOptions keeps only the flags set on the command line, so the
// project file is not overridden by flag defaults.
func changedBuildOptions(cmd *cobra.Command, flags config.BuildOptions) config.BuildOptions {
	var out config.BuildOptions
	f := cmd.Flags()
	if f.Changed("localModulesDirectory") {
		out.LocalModulesDirectory = flags.LocalModulesDirectory
	}
	if f.Changed("workspaceIndicator") {
		out.WorkspaceIndicator = flags.WorkspaceIndicator
	}
	if f.Changed("cwdFromModule") {
		out.CwdFromModule = flags.CwdFromModule
	}
	if f.Changed("workspacesRoot") {
		out.WorkspacesRoot = flags.WorkspacesRoot
	}
	if f.Changed("packager") {
		out.Packager = flags.Packager
	}
	if f.Changed("exclude") {
		out.Exclude = append([]string{}, flags.Exclude...)
	}
	if f.Changed("jobs") {
		out.Jobs = flags.Jobs
	}
	return out
}
