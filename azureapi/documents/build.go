package documents

// Build represents a single queued or completed execution of a build
// definition.
type Build struct {
	ID            int                   `json:"id,omitempty"`
	BuildNumber   string                `json:"buildNumber,omitempty"`
	Status        string                `json:"status,omitempty"`
	Result        string                `json:"result,omitempty"`
	SourceBranch  string                `json:"sourceBranch,omitempty"`
	SourceVersion string                `json:"sourceVersion,omitempty"`
	QueueTime     string                `json:"queueTime,omitempty"`
	StartTime     string                `json:"startTime,omitempty"`
	FinishTime    string                `json:"finishTime,omitempty"`
	Definition    *DefinitionReference  `json:"definition,omitempty"`
	Project       *TeamProjectReference `json:"project,omitempty"`
	Queue         *AgentPoolQueue       `json:"queue,omitempty"`
	Links         *ReferenceLinks       `json:"_links,omitempty"`
}

// DefinitionReference identifies the build definition a build was queued
// against.
type DefinitionReference struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type ReferenceLinks struct {
	Web *Link `json:"web,omitempty"`
}

type Link struct {
	Href string `json:"href"`
}

// WebURL returns the browser URL for the resource, or "" when the vendor
// did not include one.
func (l *ReferenceLinks) WebURL() string {
	if l == nil || l.Web == nil {
		return ""
	}
	return l.Web.Href
}
