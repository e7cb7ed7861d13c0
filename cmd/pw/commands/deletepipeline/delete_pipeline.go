package deletepipeline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright/cmd/pw/cli"
	"github.com/pipewright/pipewright/cmd/pw/commands"
	"github.com/pipewright/pipewright/common/models"
)

func init() {
	flags := deletePipelineCmd.Flags()
	commands.RegisterOrgFlags(flags, &deleteCmdConfig.org)
	flags.StringVar(
		&deleteCmdConfig.pipelineName,
		"pipeline-name",
		"",
		"The name of the build definition to delete. Defaults to the service name.")
	commands.RootCmd.AddCommand(deletePipelineCmd)
}

var deleteCmdConfig = struct {
	org          commands.OrgConfig
	pipelineName string
}{}

var deletePipelineCmd = &cobra.Command{
	Use:           "delete-pipeline <service-name>",
	Short:         "Delete a service's build definition",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		logFactory, err := commands.NewLogFactory()
		if err != nil {
			return err
		}
		log := logFactory("DeletePipeline")
		commands.LogFlagValues(log, cmd.Flags())
		deleteCmdConfig.org.ApplyConfig()

		serviceName := models.ServiceName(args[0])
		err = serviceName.Validate()
		if err != nil {
			return err
		}
		if deleteCmdConfig.org.Project == "" {
			return errors.New("error project must be set")
		}
		pipelineName := deleteCmdConfig.pipelineName
		if pipelineName == "" {
			pipelineName = serviceName.String()
		}

		service, err := deleteCmdConfig.org.NewProvisionService(logFactory)
		if err != nil {
			return err
		}

		err = service.DeletePipeline(ctx, deleteCmdConfig.org.Project, pipelineName)
		if err != nil {
			return err
		}
		cli.Stdout.Printf("Deleted pipeline %q", pipelineName)
		return nil
	},
}
