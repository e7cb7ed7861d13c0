package createpipeline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright/cmd/pw/cli"
	"github.com/pipewright/pipewright/cmd/pw/commands"
	"github.com/pipewright/pipewright/common/gitutil"
	"github.com/pipewright/pipewright/common/models"
	"github.com/pipewright/pipewright/provision/parser"
)

func init() {
	flags := createPipelineCmd.Flags()
	commands.RegisterOrgFlags(flags, &createCmdConfig.org)
	flags.StringVar(
		&createCmdConfig.pipelineName,
		"pipeline-name",
		"",
		"The name of the build definition. Defaults to the service name.")
	flags.StringVar(
		&createCmdConfig.repositoryName,
		"repository-name",
		"",
		"The name of the repository the pipeline builds. Detected from the local git repository when omitted.")
	flags.StringVar(
		&createCmdConfig.repositoryURL,
		"repository-url",
		"",
		"The remote URL of the repository the pipeline builds. Detected from the local git repository when omitted.")
	flags.StringVar(
		&createCmdConfig.packagesDir,
		"packages-dir",
		"",
		"The monorepo directory containing one subdirectory per service. Leave unset for a standalone repository.")
	flags.StringVar(
		&createCmdConfig.branch,
		"branch",
		"",
		"The git branch the pipeline builds. Defaults to the current branch, else main.")
	flags.StringVar(
		&createCmdConfig.agentQueue,
		"agent-queue",
		models.DefaultAgentQueueName,
		"The agent pool queue that runs the pipeline's builds.")
	flags.StringVar(
		&createCmdConfig.folder,
		"folder",
		models.DefaultFolderPath,
		"The folder the definition is filed under in the Pipelines UI.")
	flags.StringVar(
		&createCmdConfig.settingsFile,
		"settings-file",
		"",
		"A YAML, JSON or Jsonnet file with pipeline settings. Explicit flags win over the file.")
	flags.BoolVar(
		&createCmdConfig.skipFirstRun,
		"skip-first-run",
		false,
		"Create the build definition but do not queue the initial build.")
	flags.BoolVar(
		&createCmdConfig.wait,
		"wait",
		false,
		"Wait for the initial build to complete and fail if it did not succeed.")
	commands.RootCmd.AddCommand(createPipelineCmd)
}

var createCmdConfig = struct {
	org            commands.OrgConfig
	pipelineName   string
	repositoryName string
	repositoryURL  string
	packagesDir    string
	branch         string
	agentQueue     string
	folder         string
	settingsFile   string
	skipFirstRun   bool
	wait           bool
}{}

var createPipelineCmd = &cobra.Command{
	Use:               "create-pipeline <service-name>",
	Short:             "Provision a CI pipeline for a service and queue its first build",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: commands.ServiceNameCompletion(&createCmdConfig.packagesDir),
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		logFactory, err := commands.NewLogFactory()
		if err != nil {
			return err
		}
		log := logFactory("CreatePipeline")
		commands.LogFlagValues(log, cmd.Flags())
		createCmdConfig.org.ApplyConfig()

		serviceName := models.ServiceName(args[0])
		repositoryName := createCmdConfig.repositoryName
		repositoryURL := createCmdConfig.repositoryURL
		branch := createCmdConfig.branch

		// Fill any repository gaps from the enclosing git work tree. A
		// detection failure just means the flags are required.
		if repositoryName == "" || repositoryURL == "" || branch == "" {
			detected, err := gitutil.Detect(".")
			if err != nil {
				log.Debugf("No local repository detected: %v", err)
			} else {
				log.Debugf("Detected repository %q (%s) on %s", detected.Name, detected.URL, detected.Branch)
				if repositoryName == "" {
					repositoryName = detected.Name
				}
				if repositoryURL == "" {
					repositoryURL = detected.URL
				}
				if branch == "" {
					branch = detected.Branch
				}
			}
		}
		branch = models.NormalizeBranchRef(branch)

		pipelineName := createCmdConfig.pipelineName
		if pipelineName == "" {
			pipelineName = serviceName.String()
		}

		spec := &models.PipelineSpec{
			ServiceName:  serviceName,
			PipelineName: pipelineName,
			Organization: createCmdConfig.org.Organization,
			Project:      createCmdConfig.org.Project,
			Repository: models.Repository{
				Name:   repositoryName,
				URL:    repositoryURL,
				Branch: branch,
			},
			PackagesDir:  createCmdConfig.packagesDir,
			AgentQueue:   createCmdConfig.agentQueue,
			FolderPath:   createCmdConfig.folder,
			SkipFirstRun: createCmdConfig.skipFirstRun,
		}
		spec.Trigger = models.DefaultTriggerSettings(branch, spec.ServicePath())

		if createCmdConfig.settingsFile != "" {
			settings, err := parser.NewSettingsParser().ParseFile(createCmdConfig.settingsFile)
			if err != nil {
				return err
			}
			settings.ApplyTo(spec)
			// Explicit flags win over the settings file.
			if cmd.Flags().Changed("agent-queue") {
				spec.AgentQueue = createCmdConfig.agentQueue
			}
			if cmd.Flags().Changed("folder") {
				spec.FolderPath = createCmdConfig.folder
			}
		}

		err = spec.Validate()
		if err != nil {
			return err
		}

		service, err := createCmdConfig.org.NewProvisionService(logFactory)
		if err != nil {
			return err
		}

		pipeline, err := service.CreatePipeline(ctx, spec)
		if err != nil {
			return err
		}
		cli.Stdout.Printf("Created pipeline %q (definition id %d)", pipeline.Name, pipeline.DefinitionID)
		if pipeline.WebURL != "" {
			cli.Stdout.Printf("  %s", pipeline.WebURL)
		}
		if pipeline.FirstRun == nil {
			return nil
		}
		cli.Stdout.Printf("Queued build %s (build id %d) on %s", pipeline.FirstRun.BuildNumber, pipeline.FirstRun.BuildID, pipeline.FirstRun.Branch)
		if pipeline.FirstRun.WebURL != "" {
			cli.Stdout.Printf("  %s", pipeline.FirstRun.WebURL)
		}

		if !createCmdConfig.wait {
			return nil
		}
		final, err := service.WaitForBuild(ctx, spec.Project, pipeline.FirstRun.BuildID)
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
