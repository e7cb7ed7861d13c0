package provision_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright/azureapi"
	"github.com/pipewright/pipewright/azureapi/azureapitest"
	"github.com/pipewright/pipewright/azureapi/documents"
	"github.com/pipewright/pipewright/common/gerror"
	"github.com/pipewright/pipewright/common/logger"
	"github.com/pipewright/pipewright/common/models"
	"github.com/pipewright/pipewright/provision"
)

const testProject = "platform"

func newFake(t *testing.T) *azureapitest.FakeServer {
	fake := azureapitest.NewFakeServer()
	t.Cleanup(fake.Close)
	fake.AddProject(&documents.TeamProject{ID: "aaaa-bbbb", Name: testProject, State: "wellFormed"})
	fake.AddAgentQueue(hostedQueue())
	return fake
}

func newService(t *testing.T, fake *azureapitest.FakeServer, clk clock.Clock) *provision.Service {
	authenticator := azureapi.NewPersonalAccessTokenAuthenticator("secret-pat", logger.NoOpLogFactory)
	client, err := azureapi.NewAPIClient(fake.OrganizationURL("fabrikam"), authenticator, logger.NoOpLogFactory)
	require.NoError(t, err)
	return provision.NewService(client, clk, logger.NoOpLogFactory)
}

func TestCreatePipeline(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	spec := monorepoSpec()

	pipeline, err := service.CreatePipeline(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, "frontend-ci", pipeline.Name)
	require.NotZero(t, pipeline.DefinitionID)

	created := fake.CreatedDefinitions()
	require.Len(t, created, 1)
	require.Equal(t, "frontend-ci", created[0].Name)
	require.Equal(t, "packages/frontend/azure-pipelines.yaml", created[0].Process.YamlFilename)
	require.Equal(t, 9, created[0].Queue.ID)

	// The build must be queued against the definition ID the vendor
	// returned from create, used verbatim.
	queued := fake.QueuedBuilds()
	require.Len(t, queued, 1)
	require.Equal(t, pipeline.DefinitionID, queued[0].Definition.ID)
	require.Equal(t, "refs/heads/main", queued[0].SourceBranch)

	require.NotNil(t, pipeline.FirstRun)
	require.Equal(t, queued[0].ID, pipeline.FirstRun.BuildID)
	require.Regexp(t, `^\d{8}\.\d+$`, pipeline.FirstRun.BuildNumber)
	require.Equal(t, models.BuildStatusNotStarted, pipeline.FirstRun.Status)
	require.NotEmpty(t, pipeline.FirstRun.WebURL)
}

func TestCreatePipelineSkipFirstRun(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	spec := monorepoSpec()
	spec.SkipFirstRun = true

	pipeline, err := service.CreatePipeline(context.Background(), spec)
	require.NoError(t, err)
	require.Nil(t, pipeline.FirstRun)
	require.Empty(t, fake.QueuedBuilds())
}

func TestCreatePipelineInvalidSpec(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())

	_, err := service.CreatePipeline(context.Background(), &models.PipelineSpec{})
	require.Error(t, err)
	require.Empty(t, fake.CreatedDefinitions())
}

func TestCreatePipelineProjectDoesNotExist(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	spec := monorepoSpec()
	spec.Project = "no-such-project"

	_, err := service.CreatePipeline(context.Background(), spec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-project")
	gErr := gerror.ToHttpOperationFailed(err)
	require.NotNil(t, gErr)
	require.Equal(t, http.StatusNotFound, gErr.HTTPStatusCode())
}

func TestCreatePipelineAgentQueueNotFound(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	spec := monorepoSpec()
	spec.AgentQueue = "No Such Queue"

	_, err := service.CreatePipeline(context.Background(), spec)
	require.Error(t, err)
	require.True(t, gerror.IsNotFound(err))
	require.Empty(t, fake.CreatedDefinitions())
}

func TestCreatePipelineVendorRejectsDefinition(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	fake.FailNext(azureapitest.OpCreateDefinition, http.StatusBadRequest, "A pipeline with this name already exists in folder.")

	_, err := service.CreatePipeline(context.Background(), monorepoSpec())
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists in folder")
	require.Empty(t, fake.QueuedBuilds())
}

func TestCreatePipelineQueueBuildFails(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	fake.FailNext(azureapitest.OpQueueBuild, http.StatusBadRequest, "Could not queue the build because there were validation errors or warnings.")

	// No rollback: a queue failure leaves the created definition in place.
	_, err := service.CreatePipeline(context.Background(), monorepoSpec())
	require.Error(t, err)
	require.Contains(t, err.Error(), "error queueing first build")
	require.Len(t, fake.CreatedDefinitions(), 1)
}

func TestRunPipeline(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	definitionID := fake.AddDefinition(&documents.BuildDefinition{Name: "frontend-ci"})

	run, err := service.RunPipeline(context.Background(), &provision.RunRequest{
		Project:      testProject,
		PipelineName: "frontend-ci",
		Branch:       "refs/heads/main",
	})
	require.NoError(t, err)
	require.NotZero(t, run.BuildID)

	queued := fake.QueuedBuilds()
	require.Len(t, queued, 1)
	require.Equal(t, definitionID, queued[0].Definition.ID)
}

func TestRunPipelineNotFound(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())

	_, err := service.RunPipeline(context.Background(), &provision.RunRequest{
		Project:      testProject,
		PipelineName: "no-such-pipeline",
		Branch:       "refs/heads/main",
	})
	require.Error(t, err)
	require.True(t, gerror.IsNotFound(err))
}

func TestListPipelines(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	fake.AddDefinition(&documents.BuildDefinition{Name: "frontend-ci"})
	fake.AddDefinition(&documents.BuildDefinition{Name: "backend-ci"})

	definitions, err := service.ListPipelines(context.Background(), testProject)
	require.NoError(t, err)
	require.Len(t, definitions, 2)
}

func TestDeletePipeline(t *testing.T) {
	fake := newFake(t)
	service := newService(t, fake, clock.New())
	fake.AddDefinition(&documents.BuildDefinition{Name: "frontend-ci"})

	err := service.DeletePipeline(context.Background(), testProject, "frontend-ci")
	require.NoError(t, err)

	definitions, err := service.ListPipelines(context.Background(), testProject)
	require.NoError(t, err)
	require.Empty(t, definitions)
}
