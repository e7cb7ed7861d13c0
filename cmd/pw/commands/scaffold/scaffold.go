package scaffold

import (
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright/cmd/pw/cli"
	"github.com/pipewright/pipewright/cmd/pw/commands"
	"github.com/pipewright/pipewright/common/gitutil"
	"github.com/pipewright/pipewright/common/models"
	"github.com/pipewright/pipewright/provision"
)

func init() {
	flags := scaffoldCmd.Flags()
	flags.StringVar(
		&scaffoldCmdConfig.packagesDir,
		"packages-dir",
		"",
		"The monorepo directory containing one subdirectory per service. Leave unset for a standalone repository.")
	flags.StringVar(
		&scaffoldCmdConfig.branch,
		"branch",
		"",
		"The git branch the generated pipeline triggers on. Defaults to the current branch, else main.")
	flags.BoolVarP(
		&scaffoldCmdConfig.force,
		"force",
		"f",
		false,
		"Overwrite an existing pipeline file.")
	commands.RootCmd.AddCommand(scaffoldCmd)
}

var scaffoldCmdConfig = struct {
	packagesDir string
	branch      string
	force       bool
}{}

var scaffoldCmd = &cobra.Command{
	Use:               "scaffold <service-name>",
	Short:             "Write a starter azure-pipelines.yaml for a service",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: commands.ServiceNameCompletion(&scaffoldCmdConfig.packagesDir),
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logFactory, err := commands.NewLogFactory()
		if err != nil {
			return err
		}
		log := logFactory("Scaffold")

		serviceName := models.ServiceName(args[0])
		err = serviceName.Validate()
		if err != nil {
			return err
		}

		branch := scaffoldCmdConfig.branch
		if branch == "" {
			if detected, err := gitutil.Detect("."); err == nil {
				branch = detected.Branch
			} else {
				log.Debugf("No local repository detected: %v", err)
			}
		}

		spec := &models.PipelineSpec{
			ServiceName: serviceName,
			PackagesDir: scaffoldCmdConfig.packagesDir,
			Repository: models.Repository{
				Branch: models.NormalizeBranchRef(branch),
			},
		}
		written, err := provision.WriteStarterPipeline(".", spec, scaffoldCmdConfig.force)
		if err != nil {
			return err
		}
		cli.Stdout.Printf("Wrote %s", written)
		return nil
	},
}
