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

// GetProject reads a project by name or ID.
func (a *APIClient) GetProject(ctx context.Context, project string) (*documents.TeamProject, error) {
	path := fmt.Sprintf("/_apis/projects/%s", url.PathEscape(project))
	code, _, body, err := a.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if !a.isOneOf(code, []int{http.StatusOK}) {
		return nil, a.makeHTTPError(code, body)
	}
	doc := &documents.TeamProject{}
	err = json.Unmarshal(body, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
	}
	return doc, nil
}
