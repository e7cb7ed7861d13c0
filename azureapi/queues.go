package azureapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/pipewright/pipewright/azureapi/documents"
)

// GetAgentQueues lists the agent pool queues in a project, optionally
// filtered by exact queue name.
func (a *APIClient) GetAgentQueues(ctx context.Context, project string, queueName string) ([]*documents.AgentQueue, error) {
	path := fmt.Sprintf("/%s/_apis/distributedtask/queues", url.PathEscape(project))
	query := url.Values{}
	query.Set("api-version", distributedTaskAPIVersion)
	if queueName != "" {
		query.Set("queueName", queueName)
	}
	code, _, body, err := a.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if !a.isOneOf(code, []int{http.StatusOK}) {
		return nil, a.makeHTTPError(code, body)
	}
	doc := &documents.AgentQueueList{}
	err = json.Unmarshal(body, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
	}
	return doc.Value, nil
}
