package provision

import (
	"github.com/pipewright/pipewright/azureapi/documents"
	"github.com/pipewright/pipewright/common/models"
)

// BuildDefinitionFromSpec maps a pipeline spec onto the vendor's
// build-definition schema. The mapping is declarative: every field comes
// straight from the spec or the resolved agent queue.
func BuildDefinitionFromSpec(spec *models.PipelineSpec, queue *documents.AgentQueue) *documents.BuildDefinition {
	definition := &documents.BuildDefinition{
		Name:        spec.PipelineName,
		Path:        spec.FolderPath,
		Type:        documents.DefinitionTypeBuild,
		Quality:     documents.DefinitionQualityDefinition,
		QueueStatus: documents.DefinitionQueueStatusEnabled,
		Process: &documents.YamlProcess{
			Type:         documents.YamlProcessType,
			YamlFilename: spec.YAMLFilename(),
		},
		Repository: &documents.BuildRepository{
			Name:          spec.Repository.Name,
			URL:           spec.Repository.URL,
			Type:          spec.Repository.Type().String(),
			DefaultBranch: spec.Repository.Branch,
		},
		Queue: &documents.AgentPoolQueue{
			ID:   queue.ID,
			Name: queue.Name,
			Pool: queue.Pool,
		},
		Triggers: []*documents.BuildTrigger{
			{
				TriggerType:                  documents.TriggerTypeContinuousIntegration,
				BranchFilters:                spec.Trigger.BranchFilters,
				PathFilters:                  spec.Trigger.PathFilters,
				BatchChanges:                 spec.Trigger.BatchChanges,
				MaxConcurrentBuildsPerBranch: spec.Trigger.MaxConcurrentBuildsPerBranch,
			},
		},
	}
	if len(spec.Variables) > 0 {
		definition.Variables = make(map[string]documents.BuildDefinitionVariable, len(spec.Variables))
		for name, variable := range spec.Variables {
			definition.Variables[name] = documents.BuildDefinitionVariable{
				Value:         variable.Value,
				AllowOverride: variable.AllowOverride,
				IsSecret:      variable.IsSecret,
			}
		}
	}
	return definition
}
