package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright/common/models"
)

const yamlSettings = `
agent_queue: Self Hosted
folder: \services
trigger:
  branch_filters:
    - "+refs/heads/main"
    - "+refs/heads/release/*"
  batch_changes: false
variables:
  REGION:
    value: eu-west-1
    allow_override: true
`

const jsonSettings = `{
  "agent_queue": "Self Hosted",
  "folder": "\\services",
  "trigger": {
    "branch_filters": ["+refs/heads/main", "+refs/heads/release/*"],
    "batch_changes": false
  },
  "variables": {
    "REGION": {"value": "eu-west-1", "allow_override": true}
  }
}`

const jsonnetSettings = `
local releaseBranches = ["main", "release/*"];
{
  agent_queue: "Self Hosted",
  folder: "\\services",
  trigger: {
    branch_filters: ["+refs/heads/" + b for b in releaseBranches],
    batch_changes: false,
  },
  variables: {
    REGION: { value: "eu-west-1", allow_override: true },
  },
}
`

func requireExpectedSettings(t *testing.T, settings *PipelineSettings) {
	require.Equal(t, "Self Hosted", settings.AgentQueue)
	require.Equal(t, `\services`, settings.Folder)
	require.NotNil(t, settings.Trigger)
	require.Equal(t, []string{"+refs/heads/main", "+refs/heads/release/*"}, settings.Trigger.BranchFilters)
	require.NotNil(t, settings.Trigger.BatchChanges)
	require.False(t, *settings.Trigger.BatchChanges)
	require.Equal(t, models.Variable{Value: "eu-west-1", AllowOverride: true}, settings.Variables["REGION"])
}

// The three formats must parse to identical settings.
func TestParseYAML(t *testing.T) {
	settings, err := NewSettingsParser().Parse([]byte(yamlSettings), SettingsTypeYAML)
	require.NoError(t, err)
	requireExpectedSettings(t, settings)
}

func TestParseJSON(t *testing.T) {
	settings, err := NewSettingsParser().Parse([]byte(jsonSettings), SettingsTypeJSON)
	require.NoError(t, err)
	requireExpectedSettings(t, settings)
}

func TestParseJSONNET(t *testing.T) {
	settings, err := NewSettingsParser().Parse([]byte(jsonnetSettings), SettingsTypeJSONNET)
	require.NoError(t, err)
	requireExpectedSettings(t, settings)
}

func TestParseRejectsUnknownYAMLFields(t *testing.T) {
	_, err := NewSettingsParser().Parse([]byte("agent_quue: oops\n"), SettingsTypeYAML)
	require.Error(t, err)
}

func TestTypeFromFilename(t *testing.T) {
	require.Equal(t, SettingsTypeYAML, TypeFromFilename("settings.yaml"))
	require.Equal(t, SettingsTypeYAML, TypeFromFilename("settings.yml"))
	require.Equal(t, SettingsTypeJSON, TypeFromFilename("settings.json"))
	require.Equal(t, SettingsTypeJSONNET, TypeFromFilename("settings.jsonnet"))
	require.Equal(t, SettingsTypeInvalid, TypeFromFilename("settings.toml"))
}

func TestApplyToTouchesOnlySetFields(t *testing.T) {
	spec := &models.PipelineSpec{
		AgentQueue: models.DefaultAgentQueueName,
		FolderPath: models.DefaultFolderPath,
		Trigger:    models.DefaultTriggerSettings("refs/heads/main", "packages/frontend"),
	}

	settings := &PipelineSettings{
		Trigger: &TriggerSettings{MaxConcurrentBuildsPerBranch: 3},
	}
	settings.ApplyTo(spec)

	require.Equal(t, models.DefaultAgentQueueName, spec.AgentQueue)
	require.Equal(t, models.DefaultFolderPath, spec.FolderPath)
	require.Equal(t, []string{"+refs/heads/main"}, spec.Trigger.BranchFilters)
	require.Equal(t, []string{"+packages/frontend"}, spec.Trigger.PathFilters)
	require.True(t, spec.Trigger.BatchChanges)
	require.Equal(t, 3, spec.Trigger.MaxConcurrentBuildsPerBranch)
}
