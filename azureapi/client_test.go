package azureapi_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright/azureapi"
	"github.com/pipewright/pipewright/azureapi/azureapitest"
	"github.com/pipewright/pipewright/azureapi/documents"
	"github.com/pipewright/pipewright/common/gerror"
	"github.com/pipewright/pipewright/common/logger"
)

const testOrganization = "fabrikam"
const testProject = "platform"

func newTestClient(t *testing.T, fake *azureapitest.FakeServer) *azureapi.APIClient {
	authenticator := azureapi.NewPersonalAccessTokenAuthenticator("secret-pat", logger.NoOpLogFactory)
	client, err := azureapi.NewAPIClient(fake.OrganizationURL(testOrganization), authenticator, logger.NoOpLogFactory)
	require.NoError(t, err)
	return client
}

func newFakeWithProject(t *testing.T) *azureapitest.FakeServer {
	fake := azureapitest.NewFakeServer()
	t.Cleanup(fake.Close)
	fake.AddProject(&documents.TeamProject{ID: "aaaa-bbbb", Name: testProject, State: "wellFormed"})
	return fake
}

func TestPersonalAccessTokenAuthentication(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)

	project, err := client.GetProject(context.Background(), testProject)
	require.NoError(t, err)
	require.Equal(t, testProject, project.Name)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte(":secret-pat"))
	authorizations := fake.Authorizations()
	require.NotEmpty(t, authorizations)
	require.Equal(t, expected, authorizations[0])
}

func TestSessionHeaderConstantPerClient(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)

	_, err := client.GetProject(context.Background(), testProject)
	require.NoError(t, err)
	_, err = client.GetProject(context.Background(), testProject)
	require.NoError(t, err)

	sessionIDs := fake.SessionIDs()
	require.Len(t, sessionIDs, 2)
	require.NotEmpty(t, sessionIDs[0])
	require.Equal(t, sessionIDs[0], sessionIDs[1])
}

func TestGetProjectNotFound(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)

	_, err := client.GetProject(context.Background(), "no-such-project")
	require.Error(t, err)
	require.True(t, gerror.IsHttpOperationFailed(err))
	require.True(t, gerror.HasHTTPStatusCode(err, http.StatusNotFound))
}

func TestCreateDefinitionErrorMapping(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)
	fake.FailNext(azureapitest.OpCreateDefinition, http.StatusBadRequest, "A pipeline with this name already exists in folder.")

	_, err := client.CreateDefinition(context.Background(), testProject, &documents.BuildDefinition{Name: "frontend"})
	require.Error(t, err)
	require.True(t, gerror.IsHttpOperationFailed(err))
	require.True(t, gerror.HasHTTPStatusCode(err, http.StatusBadRequest))
	require.Contains(t, err.Error(), "A pipeline with this name already exists in folder.")
}

func TestListDefinitionsFollowsContinuationTokens(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)
	for i := 0; i < 5; i++ {
		fake.AddDefinition(&documents.BuildDefinition{Name: fmt.Sprintf("pipeline-%d", i)})
	}
	fake.SetPageSize(2)

	defs, err := client.ListDefinitions(context.Background(), testProject, nil)
	require.NoError(t, err)
	require.Len(t, defs, 5)
	for i, def := range defs {
		require.Equal(t, fmt.Sprintf("pipeline-%d", i), def.Name)
	}
}

func TestListDefinitionsNameFilter(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)
	fake.AddDefinition(&documents.BuildDefinition{Name: "frontend"})
	fake.AddDefinition(&documents.BuildDefinition{Name: "backend"})

	defs, err := client.ListDefinitions(context.Background(), testProject, &azureapi.ListDefinitionsOptions{Name: "backend"})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "backend", defs[0].Name)
}

func TestGetAgentQueues(t *testing.T) {
	fake := newFakeWithProject(t)
	client := newTestClient(t, fake)
	fake.AddAgentQueue(&documents.AgentQueue{
		ID:   9,
		Name: "Azure Pipelines",
		Pool: &documents.TaskAgentPoolReference{ID: 9, Name: "Azure Pipelines", IsHosted: true},
	})
	fake.AddAgentQueue(&documents.AgentQueue{ID: 12, Name: "Self Hosted"})

	queues, err := client.GetAgentQueues(context.Background(), testProject, "Azure Pipelines")
	require.NoError(t, err)
	require.Len(t, queues, 1)
	require.Equal(t, 9, queues[0].ID)
}
