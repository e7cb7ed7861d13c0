package documents

// ErrorDocument is the error body Azure DevOps returns for failed requests.
type ErrorDocument struct {
	ID        string `json:"$id,omitempty"`
	Message   string `json:"message"`
	TypeName  string `json:"typeName,omitempty"`
	TypeKey   string `json:"typeKey,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
	EventID   int    `json:"eventId,omitempty"`
}
