package documents

// AgentQueue represents an agent pool queue retrieved from the
// distributed-task API.
type AgentQueue struct {
	ID        int                     `json:"id"`
	Name      string                  `json:"name"`
	ProjectID string                  `json:"projectId,omitempty"`
	Pool      *TaskAgentPoolReference `json:"pool,omitempty"`
}
