package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/wspack/internal/config"
	"github.com/danieljhkim/wspack/internal/engine"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	var localModulesDirectory string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a build is applied in the current directory",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}

			flags := config.CleanOptions{}
			if cmd.Flags().Changed("localModulesDirectory") {
				flags.LocalModulesDirectory = localModulesDirectory
			}
			opts, err := config.ResolveClean(cwd, flags)
			if err != nil {
				return err
			}

			eng := newEngine("", engine.NopReporter{})
			result, err := eng.Status(cmd.Context(), &engine.StatusRequest{
				CWD:                   cwd,
				LocalModulesDirectory: opts.LocalModulesDirectory,
			})
			if err != nil {
				return err
			}

			if g.json {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			printStatus(newPrinter(cmd), result)
			return nil
		},
	}

	statusCmd.Flags().StringVarP(&localModulesDirectory, "localModulesDirectory", "l", config.DefaultLocalModulesDirectory, "The directory the local modules are stored in")

	return statusCmd
}

func printStatus(p *printer, result *engine.StatusResult) {
	p.Section("Deployment Status")

	if result.Applied {
		p.LabelValueWithColor("State", "built", successColor)
	} else {
		p.LabelValueWithColor("State", "clean", infoColor)
	}
	p.LabelValue("Manifest", result.ManifestPath)
	if result.Applied {
		p.LabelValue("Original", result.BackupPath)
	}
	p.LabelValue("Local modules", result.ArtifactDir)

	if !result.ArtifactDirExists {
		p.EmptyState("Local modules directory does not exist.")
		return
	}
	if len(result.Artifacts) == 0 {
		p.EmptyState("No archives.")
		return
	}

	p.Section(formatCount(len(result.Artifacts), "archive", "archives"))
	rows := make([][]string, 0, len(result.Artifacts))
	var total uint64
	for _, a := range result.Artifacts {
		rows = append(rows, []string{a.Name, humanize.Bytes(uint64(a.Digest.Size)), a.Digest.Short()})
		total += uint64(a.Digest.Size)
	}
	p.Table([]string{"NAME", "SIZE", "SHA256"}, rows)
	p.LabelValue("Total", humanize.Bytes(total))
}
