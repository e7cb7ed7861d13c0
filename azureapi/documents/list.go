package documents

// List endpoints wrap their results in a count/value envelope.

type BuildDefinitionList struct {
	Count int                `json:"count"`
	Value []*BuildDefinition `json:"value"`
}

type AgentQueueList struct {
	Count int           `json:"count"`
	Value []*AgentQueue `json:"value"`
}

type BuildList struct {
	Count int      `json:"count"`
	Value []*Build `json:"value"`
}
