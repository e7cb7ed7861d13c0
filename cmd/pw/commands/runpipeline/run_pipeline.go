package runpipeline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright/cmd/pw/cli"
	"github.com/pipewright/pipewright/cmd/pw/commands"
	"github.com/pipewright/pipewright/common/models"
	"github.com/pipewright/pipewright/provision"
)

func init() {
	flags := runPipelineCmd.Flags()
	commands.RegisterOrgFlags(flags, &runCmdConfig.org)
	flags.StringVar(
		&runCmdConfig.pipelineName,
		"pipeline-name",
		"",
		"The name of the build definition to run. Defaults to the service name.")
	flags.StringVar(
		&runCmdConfig.branch,
		"branch",
		"",
		"The git branch to build. Defaults to main.")
	flags.BoolVar(
		&runCmdConfig.wait,
		"wait",
		false,
		"Wait for the build to complete and fail if it did not succeed.")
	commands.RootCmd.AddCommand(runPipelineCmd)
}

var runCmdConfig = struct {
	org          commands.OrgConfig
	pipelineName string
	branch       string
	wait         bool
}{}

var runPipelineCmd = &cobra.Command{
	Use:           "run-pipeline <service-name>",
	Short:         "Queue a build of an existing pipeline",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		logFactory, err := commands.NewLogFactory()
		if err != nil {
			return err
		}
		log := logFactory("RunPipeline")
		commands.LogFlagValues(log, cmd.Flags())
		runCmdConfig.org.ApplyConfig()

		serviceName := models.ServiceName(args[0])
		err = serviceName.Validate()
		if err != nil {
			return err
		}
		if runCmdConfig.org.Project == "" {
			return errors.New("error project must be set")
		}
		pipelineName := runCmdConfig.pipelineName
		if pipelineName == "" {
			pipelineName = serviceName.String()
		}

		service, err := runCmdConfig.org.NewProvisionService(logFactory)
		if err != nil {
			return err
		}

		run, err := service.RunPipeline(ctx, &provision.RunRequest{
			Project:      runCmdConfig.org.Project,
			PipelineName: pipelineName,
			Branch:       models.NormalizeBranchRef(runCmdConfig.branch),
		})
		if err != nil {
			return err
		}
		cli.Stdout.Printf("Queued build %s (build id %d) on %s", run.BuildNumber, run.BuildID, run.Branch)
		if run.WebURL != "" {
			cli.Stdout.Printf("  %s", run.WebURL)
		}

		if !runCmdConfig.wait {
			return nil
		}
		final, err := service.WaitForBuild(ctx, runCmdConfig.org.Project, run.BuildID)
		if err != nil {
			return err
		}
		if !models.BuildResult(final.Result).Succeeded() {
			return errors.Errorf("error build %s finished with result %q", final.BuildNumber, final.Result)
		}
		cli.Stdout.Printf("Build %s succeeded", final.BuildNumber)
		return nil
	},
}
