package azureapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/pipewright/pipewright/azureapi/documents"
	"github.com/pipewright/pipewright/common/gerror"
	"github.com/pipewright/pipewright/common/logger"
)

const (
	// defaultAPIVersion is the Build REST API version every request pins.
	defaultAPIVersion = "7.1"
	// distributedTaskAPIVersion is the version the distributed-task queues
	// endpoint requires.
	distributedTaskAPIVersion = "7.1-preview.1"
	// sessionHeader carries a per-client UUID the vendor uses to correlate
	// requests from one session.
	sessionHeader = "X-TFS-Session"
	// continuationTokenHeader carries the cursor for the next page of a
	// list response.
	continuationTokenHeader = "x-ms-continuationtoken"
)

// OrganizationURL returns the base URL for an Azure DevOps organization.
func OrganizationURL(organization string) string {
	return fmt.Sprintf("https://dev.azure.com/%s", organization)
}

// APIClient is an HTTP client used to interact with the Azure DevOps REST API.
// Transport-level resilience (retry with backoff) lives here; callers see a
// single error per operation.
type APIClient struct {
	baseURL         string
	sessionID       string
	httpClient      *http.Client
	retryableClient *retryablehttp.Client
	authenticator   Authenticator
	log             logger.Log
}

func NewAPIClient(baseURL string, authenticator Authenticator, logFactory logger.LogFactory) (*APIClient, error) {
	var err error
	log := logFactory("APIClient")

	// Create a separate HTTP client to configure; do not share HTTP clients between instances of APIClient
	// so that each APIClient can have separate authentication.
	httpClient := &http.Client{}
	retryableClient := retryablehttp.NewClient()
	retryableClient.RetryWaitMin = time.Millisecond * 500
	retryableClient.RetryWaitMax = time.Second * 10
	retryableClient.RetryMax = 4
	retryableClient.Logger = NewLeveledLogger(log) // use adaptor to get log level support
	retryableClient.HTTPClient = httpClient

	if authenticator != nil {
		retryableClient, err = authenticator.AuthenticateClient(retryableClient)
		if err != nil {
			return nil, fmt.Errorf("error setting up HTTP client for authentication: %w", err)
		}
	}
	return &APIClient{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		sessionID:       uuid.New().String(),
		authenticator:   authenticator,
		httpClient:      httpClient,
		retryableClient: retryableClient,
		log:             log,
	}, nil
}

// get performs a basic HTTP GET request against the API. Returns the HTTP status code,
// headers and full response body. Returns an error if there was a problem making the
// request. No status code inspection is made.
func (a *APIClient) get(ctx context.Context, path string, query url.Values) (int, http.Header, []byte, error) {
	return a.doRequest(ctx, "GET", path, query, nil)
}

// post performs a basic HTTP POST request against the API. If data is not nil it will be
// serialized to JSON and sent in the request body. Returns the HTTP status code, headers
// and buffered response body. Returns an error if there was a problem making the request.
// No status code inspection is made.
func (a *APIClient) post(ctx context.Context, path string, query url.Values, data interface{}) (int, http.Header, []byte, error) {
	return a.doRequest(ctx, "POST", path, query, data)
}

// delete performs a basic HTTP DELETE request against the API. Returns the HTTP status
// code, headers and buffered response body. Returns an error if there was a problem
// making the request. No status code inspection is made.
func (a *APIClient) delete(ctx context.Context, path string, query url.Values) (int, http.Header, []byte, error) {
	return a.doRequest(ctx, "DELETE", path, query, nil)
}

// doRequest performs an HTTP request and returns the status code, response headers and
// response body. Returns an error if there was a problem making the request but no HTTP
// status code inspection is made.
func (a *APIClient) doRequest(ctx context.Context, verb string, path string, query url.Values, data interface{}) (int, http.Header, []byte, error) {
	var (
		buf []byte
		err error
	)
	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			return -1, nil, nil, errors.Wrap(err, "error marshaling request data to JSON")
		}
	}
	endpoint, err := a.makeRequestURL(path, query)
	if err != nil {
		return -1, nil, nil, fmt.Errorf("error making request url: %w", err)
	}
	req, err := retryablehttp.NewRequest(verb, endpoint, buf)
	if err != nil {
		return -1, nil, nil, errors.Wrap(err, "error making request")
	}
	req = req.WithContext(ctx)
	if a.authenticator != nil {
		req.Header, err = a.authenticator.AuthenticateRequest(req.Header)
		if err != nil {
			return -1, nil, nil, errors.Wrap(err, "error authenticating request")
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, a.sessionID)
	res, err := a.retryableClient.Do(req)
	if err != nil {
		return -1, nil, nil, errors.Wrap(err, "error during request")
	}
	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return -1, nil, nil, errors.Wrap(err, "error reading response body")
	}
	return res.StatusCode, res.Header, body, nil
}

// makeRequestURL joins a path onto the organization base URL and pins the
// API version, leaving any version the caller already set untouched.
func (a *APIClient) makeRequestURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	uri, err := url.ParseRequestURI(a.baseURL + path)
	if err != nil {
		return "", errors.Wrap(err, "error forming url")
	}
	if query == nil {
		query = url.Values{}
	}
	if query.Get("api-version") == "" {
		query.Set("api-version", defaultAPIVersion)
	}
	uri.RawQuery = query.Encode()
	return uri.String(), nil
}

// isOneOf returns true iff an HTTP status code is one of the supplied set of valid codes.
func (a *APIClient) isOneOf(statusCode int, validCodes []int) bool {
	for _, code := range validCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// makeHTTPError attempts to parse an HTTP response body as the vendor's
// error document and return a structured error. If the response body cannot
// be parsed, a generic error including the text of the response body will
// be returned instead.
func (a *APIClient) makeHTTPError(statusCode int, body []byte) error {
	doc := &documents.ErrorDocument{}
	err := json.Unmarshal(body, doc)
	if err != nil || doc.Message == "" {
		// We don't have error info in the body so return a more generic HTTP error
		return gerror.NewErrHttpOperationFailed(
			fmt.Sprintf("error %d in HTTP response: %s", statusCode, string(body[:])),
			statusCode,
			nil,
		)
	}
	gErr := gerror.NewErrHttpOperationFailed(doc.Message, statusCode, nil)
	if doc.TypeKey != "" {
		gErr = gErr.Detail("typeKey", doc.TypeKey)
	}
	return gErr
}
