package models

// TriggerSettings describes the continuous-integration trigger attached to
// a provisioned pipeline. Filters use the vendor's syntax: a "+" prefix
// includes, a "-" prefix excludes.
type TriggerSettings struct {
	BranchFilters                []string `json:"branch_filters" yaml:"branch_filters"`
	PathFilters                  []string `json:"path_filters" yaml:"path_filters"`
	BatchChanges                 bool     `json:"batch_changes" yaml:"batch_changes"`
	MaxConcurrentBuildsPerBranch int      `json:"max_concurrent_builds_per_branch" yaml:"max_concurrent_builds_per_branch"`
}

// DefaultTriggerSettings builds the trigger for a newly provisioned
// pipeline: build the configured branch, and in a monorepo only when files
// under the service's own directory change, so per-service pipelines do not
// trigger on sibling changes.
func DefaultTriggerSettings(branchRef string, servicePathPrefix string) TriggerSettings {
	settings := TriggerSettings{
		BranchFilters:                []string{"+" + branchRef},
		BatchChanges:                 true,
		MaxConcurrentBuildsPerBranch: 1,
	}
	if servicePathPrefix != "" {
		settings.PathFilters = []string{"+" + servicePathPrefix}
	}
	return settings
}
