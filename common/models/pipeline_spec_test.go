package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validSpec() *PipelineSpec {
	return &PipelineSpec{
		ServiceName:  "frontend",
		PipelineName: "frontend",
		Organization: "fabrikam",
		Project:      "platform",
		Repository: Repository{
			Name:   "platform",
			URL:    "https://dev.azure.com/fabrikam/platform/_git/platform",
			Branch: "refs/heads/main",
		},
		AgentQueue: DefaultAgentQueueName,
		FolderPath: DefaultFolderPath,
	}
}

func TestPipelineSpecYAMLFilenameStandalone(t *testing.T) {
	spec := validSpec()
	require.Equal(t, "azure-pipelines.yaml", spec.YAMLFilename())
	require.Equal(t, "", spec.ServicePath())
}

func TestPipelineSpecYAMLFilenameMonorepo(t *testing.T) {
	spec := validSpec()
	spec.PackagesDir = "packages"
	require.Equal(t, "packages/frontend/azure-pipelines.yaml", spec.YAMLFilename())
	require.Equal(t, "packages/frontend", spec.ServicePath())
}

func TestPipelineSpecYAMLFilenameIsCleaned(t *testing.T) {
	spec := validSpec()
	spec.PackagesDir = "packages/"
	require.Equal(t, "packages/frontend/azure-pipelines.yaml", spec.YAMLFilename())

	// Repository paths always use forward slashes, even when the packages
	// dir was given in host-path form on Windows.
	spec.PackagesDir = `packages\services`
	require.Equal(t, "packages/services/frontend/azure-pipelines.yaml", spec.YAMLFilename())
}

func TestPipelineSpecValidate(t *testing.T) {
	spec := validSpec()
	require.NoError(t, spec.Validate())
}

func TestPipelineSpecValidateReportsAllViolations(t *testing.T) {
	spec := &PipelineSpec{}
	err := spec.Validate()
	require.Error(t, err)
	for _, fragment := range []string{
		"service name must be set",
		"pipeline name must be set",
		"organization must be set",
		"project must be set",
		"repository name must be set",
		"repository url must be set",
		"agent queue must be set",
	} {
		require.True(t, strings.Contains(err.Error(), fragment), "expected %q in %q", fragment, err.Error())
	}
}

func TestServiceNameValidate(t *testing.T) {
	require.NoError(t, ServiceName("frontend").Validate())
	require.NoError(t, ServiceName("billing_v2-api").Validate())
	require.Error(t, ServiceName("").Validate())
	require.Error(t, ServiceName("no spaces allowed").Validate())
	require.Error(t, ServiceName("no/slashes").Validate())
	require.Error(t, ServiceName(strings.Repeat("a", 101)).Validate())
	require.True(t, ServiceName(strings.Repeat("a", 100)).Valid())
}
