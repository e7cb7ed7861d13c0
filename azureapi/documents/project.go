package documents

// TeamProject represents project data retrieved from Azure DevOps.
type TeamProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	State       string `json:"state,omitempty"`
	Revision    int64  `json:"revision,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
}

// TeamProjectReference is the shallow project reference embedded in other
// vendor documents.
type TeamProjectReference struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}
