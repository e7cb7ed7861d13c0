package documents

// The structs in this package bind the documented Azure DevOps Build REST
// API (api-version 7.1) schema. Field names and JSON tags follow the vendor
// schema verbatim.

const (
	// DefinitionTypeBuild is the only definition type the Build API accepts.
	DefinitionTypeBuild = "build"
	// DefinitionQualityDefinition marks a saved (non-draft) definition.
	DefinitionQualityDefinition = "definition"
	// DefinitionQueueStatusEnabled allows builds to be queued against the definition.
	DefinitionQueueStatusEnabled = "enabled"
)

// BuildDefinition is the vendor-side configuration object describing how
// and when a pipeline runs.
type BuildDefinition struct {
	ID          int                                `json:"id,omitempty"`
	Name        string                             `json:"name"`
	Path        string                             `json:"path,omitempty"`
	Type        string                             `json:"type"`
	Quality     string                             `json:"quality,omitempty"`
	QueueStatus string                             `json:"queueStatus,omitempty"`
	Revision    int                                `json:"revision,omitempty"`
	Project     *TeamProjectReference              `json:"project,omitempty"`
	Process     *YamlProcess                       `json:"process"`
	Repository  *BuildRepository                   `json:"repository"`
	Queue       *AgentPoolQueue                    `json:"queue"`
	Triggers    []*BuildTrigger                    `json:"triggers,omitempty"`
	Variables   map[string]BuildDefinitionVariable `json:"variables,omitempty"`
	Links       *ReferenceLinks                    `json:"_links,omitempty"`
}

// YamlProcessType identifies the YAML designer process in the vendor's
// polymorphic process field.
const YamlProcessType = 2

// YamlProcess points the definition at a YAML pipeline file in the linked
// repository.
type YamlProcess struct {
	Type         int    `json:"type"`
	YamlFilename string `json:"yamlFilename"`
}

// AgentPoolQueue binds the definition to the agent pool queue that runs its
// builds.
type AgentPoolQueue struct {
	ID   int                     `json:"id,omitempty"`
	Name string                  `json:"name,omitempty"`
	Pool *TaskAgentPoolReference `json:"pool,omitempty"`
}

type TaskAgentPoolReference struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	IsHosted bool   `json:"isHosted,omitempty"`
}

// BuildRepository links the definition to the source repository it builds.
type BuildRepository struct {
	ID                 string            `json:"id,omitempty"`
	Name               string            `json:"name"`
	URL                string            `json:"url"`
	Type               string            `json:"type"`
	DefaultBranch      string            `json:"defaultBranch,omitempty"`
	Clean              string            `json:"clean,omitempty"`
	CheckoutSubmodules bool              `json:"checkoutSubmodules,omitempty"`
	Properties         map[string]string `json:"properties,omitempty"`
}

// TriggerTypeContinuousIntegration identifies a CI trigger in the vendor's
// polymorphic triggers array.
const TriggerTypeContinuousIntegration = "continuousIntegration"

type BuildTrigger struct {
	TriggerType                  string   `json:"triggerType"`
	BranchFilters                []string `json:"branchFilters,omitempty"`
	PathFilters                  []string `json:"pathFilters,omitempty"`
	BatchChanges                 bool     `json:"batchChanges,omitempty"`
	MaxConcurrentBuildsPerBranch int      `json:"maxConcurrentBuildsPerBranch,omitempty"`
	SettingsSourceType           int      `json:"settingsSourceType,omitempty"`
}

type BuildDefinitionVariable struct {
	Value         string `json:"value"`
	AllowOverride bool   `json:"allowOverride,omitempty"`
	IsSecret      bool   `json:"isSecret,omitempty"`
}
