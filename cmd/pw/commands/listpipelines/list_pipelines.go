package listpipelines

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright/cmd/pw/cli"
	"github.com/pipewright/pipewright/cmd/pw/commands"
)

func init() {
	commands.RegisterOrgFlags(listPipelinesCmd.Flags(), &listCmdConfig.org)
	commands.RootCmd.AddCommand(listPipelinesCmd)
}

var listCmdConfig = struct {
	org commands.OrgConfig
}{}

var listPipelinesCmd = &cobra.Command{
	Use:           "list-pipelines",
	Short:         "List the build definitions in a project",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		logFactory, err := commands.NewLogFactory()
		if err != nil {
			return err
		}
		listCmdConfig.org.ApplyConfig()
		if listCmdConfig.org.Project == "" {
			return errors.New("error project must be set")
		}

		service, err := listCmdConfig.org.NewProvisionService(logFactory)
		if err != nil {
			return err
		}

		definitions, err := service.ListPipelines(ctx, listCmdConfig.org.Project)
		if err != nil {
			return err
		}
		for _, definition := range definitions {
			cli.Stdout.Printf("%d\t%s\t%s\t%s", definition.ID, definition.Name, definition.Path, definition.QueueStatus)
		}
		return nil
	},
}
