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

// QueueBuild queues a single execution of a build definition. The build
// document must reference the definition by ID; the vendor fills in the
// build number, status and links.
func (a *APIClient) QueueBuild(ctx context.Context, project string, build *documents.Build) (*documents.Build, error) {
	path := fmt.Sprintf("/%s/_apis/build/builds", url.PathEscape(project))
	code, _, body, err := a.post(ctx, path, nil, build)
	if err != nil {
		return nil, err
	}
	if !a.isOneOf(code, []int{http.StatusOK, http.StatusCreated}) {
		return nil, a.makeHTTPError(code, body)
	}
	doc := &documents.Build{}
	err = json.Unmarshal(body, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
	}
	return doc, nil
}

// GetBuild reads a build by ID.
func (a *APIClient) GetBuild(ctx context.Context, project string, buildID int) (*documents.Build, error) {
	path := fmt.Sprintf("/%s/_apis/build/builds/%d", url.PathEscape(project), buildID)
	code, _, body, err := a.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if !a.isOneOf(code, []int{http.StatusOK}) {
		return nil, a.makeHTTPError(code, body)
	}
	doc := &documents.Build{}
	err = json.Unmarshal(body, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
	}
	return doc, nil
}
