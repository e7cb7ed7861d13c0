package provision_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/pipewright/pipewright/common/gerror"
	"github.com/pipewright/pipewright/provision"
)

func TestWriteStarterPipeline(t *testing.T) {
	repoRoot := t.TempDir()
	spec := monorepoSpec()

	written, err := provision.WriteStarterPipeline(repoRoot, spec, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(repoRoot, "packages", "frontend", "azure-pipelines.yaml"), written)

	// The generated file must round-trip as YAML.
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Contains(t, parsed, "trigger")
	require.Contains(t, parsed, "pool")
	require.Contains(t, parsed, "steps")
}

func TestWriteStarterPipelineStandaloneRepo(t *testing.T) {
	repoRoot := t.TempDir()
	spec := monorepoSpec()
	spec.PackagesDir = ""

	written, err := provision.WriteStarterPipeline(repoRoot, spec, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(repoRoot, "azure-pipelines.yaml"), written)
}

func TestWriteStarterPipelineRefusesOverwrite(t *testing.T) {
	repoRoot := t.TempDir()
	spec := monorepoSpec()

	_, err := provision.WriteStarterPipeline(repoRoot, spec, false)
	require.NoError(t, err)

	_, err = provision.WriteStarterPipeline(repoRoot, spec, false)
	require.Error(t, err)
	require.True(t, gerror.IsAlreadyExists(err))

	_, err = provision.WriteStarterPipeline(repoRoot, spec, true)
	require.NoError(t, err)
}

func TestGenerateStarterPipelineUsesBareBranchName(t *testing.T) {
	data, err := provision.GenerateStarterPipeline("frontend", "refs/heads/develop")
	require.NoError(t, err)

	var parsed struct {
		Trigger struct {
			Branches struct {
				Include []string `yaml:"include"`
			} `yaml:"branches"`
		} `yaml:"trigger"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Equal(t, []string{"develop"}, parsed.Trigger.Branches.Include)
}
