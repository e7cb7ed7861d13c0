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

// CreateDefinition creates a new build definition in the specified project
// and returns the definition as stored by the vendor, including its
// assigned ID.
func (a *APIClient) CreateDefinition(ctx context.Context, project string, definition *documents.BuildDefinition) (*documents.BuildDefinition, error) {
	path := fmt.Sprintf("/%s/_apis/build/definitions", url.PathEscape(project))
	code, _, body, err := a.post(ctx, path, nil, definition)
	if err != nil {
		return nil, err
	}
	if !a.isOneOf(code, []int{http.StatusOK, http.StatusCreated}) {
		return nil, a.makeHTTPError(code, body)
	}
	doc := &documents.BuildDefinition{}
	err = json.Unmarshal(body, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
	}
	return doc, nil
}

// GetDefinition reads a build definition by ID.
func (a *APIClient) GetDefinition(ctx context.Context, project string, definitionID int) (*documents.BuildDefinition, error) {
	path := fmt.Sprintf("/%s/_apis/build/definitions/%d", url.PathEscape(project), definitionID)
	code, _, body, err := a.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if !a.isOneOf(code, []int{http.StatusOK}) {
		return nil, a.makeHTTPError(code, body)
	}
	doc := &documents.BuildDefinition{}
	err = json.Unmarshal(body, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
	}
	return doc, nil
}

// DeleteDefinition deletes a build definition by ID.
func (a *APIClient) DeleteDefinition(ctx context.Context, project string, definitionID int) error {
	path := fmt.Sprintf("/%s/_apis/build/definitions/%d", url.PathEscape(project), definitionID)
	code, _, body, err := a.delete(ctx, path, nil)
	if err != nil {
		return err
	}
	if !a.isOneOf(code, []int{http.StatusOK, http.StatusNoContent}) {
		return a.makeHTTPError(code, body)
	}
	return nil
}

// ListDefinitionsOptions filters a definition listing.
type ListDefinitionsOptions struct {
	// Name filters definitions by name. Supports the vendor's * wildcard.
	Name string
}

// ListDefinitions lists build definitions in the specified project.
// All pages of results are read and combined into a single list, following
// continuation tokens until the vendor stops returning one.
func (a *APIClient) ListDefinitions(ctx context.Context, project string, opts *ListDefinitionsOptions) ([]*documents.BuildDefinition, error) {
	var (
		results           []*documents.BuildDefinition
		continuationToken string
		morePages         = true
	)
	path := fmt.Sprintf("/%s/_apis/build/definitions", url.PathEscape(project))
	for morePages {
		query := url.Values{}
		if opts != nil && opts.Name != "" {
			query.Set("name", opts.Name)
		}
		if continuationToken != "" {
			query.Set("continuationToken", continuationToken)
		}
		code, header, body, err := a.get(ctx, path, query)
		if err != nil {
			return nil, fmt.Errorf("error listing build definitions: %w", err)
		}
		if !a.isOneOf(code, []int{http.StatusOK}) {
			return nil, a.makeHTTPError(code, body)
		}
		doc := &documents.BuildDefinitionList{}
		err = json.Unmarshal(body, doc)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing response body: %s", string(body[:]))
		}
		results = append(results, doc.Value...)
		continuationToken = header.Get(continuationTokenHeader)
		morePages = continuationToken != ""
	}
	return results, nil
}
