package azureapi

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/pipewright/pipewright/common/logger"
)

// PersonalAccessToken is a user-scoped Azure DevOps token.
type PersonalAccessToken string

func (t PersonalAccessToken) String() string {
	return string(t)
}

// Authenticator enables the API client to make authenticated API requests
// using pluggable authentication methods.
type Authenticator interface {
	AuthenticateRequest(h http.Header) (http.Header, error)
	// AuthenticateClient is called after an HTTP client is set up for the API. Allows the
	// authenticator to set properties on the underlying client before any request is made.
	AuthenticateClient(client *retryablehttp.Client) (*retryablehttp.Client, error)
}

// PersonalAccessTokenAuthenticator authenticates API requests using a
// personal access token. Azure DevOps accepts PATs as HTTP Basic
// credentials with an empty username.
type PersonalAccessTokenAuthenticator struct {
	token string
	logger.Log
}

func NewPersonalAccessTokenAuthenticator(token PersonalAccessToken, logFactory logger.LogFactory) *PersonalAccessTokenAuthenticator {
	return &PersonalAccessTokenAuthenticator{
		token: string(token),
		Log:   logFactory("PersonalAccessTokenAuthenticator"),
	}
}

func (a *PersonalAccessTokenAuthenticator) AuthenticateClient(client *retryablehttp.Client) (*retryablehttp.Client, error) {
	return client, nil
}

func (a *PersonalAccessTokenAuthenticator) AuthenticateRequest(h http.Header) (http.Header, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(":" + a.token))
	h.Set("Authorization", "Basic "+credentials)
	return h, nil
}

// BearerTokenAuthenticator authenticates API requests using an OAuth bearer
// token, e.g. the job access token available inside an Azure Pipelines run.
type BearerTokenAuthenticator struct {
	source oauth2.TokenSource
	logger.Log
}

func NewBearerTokenAuthenticator(source oauth2.TokenSource, logFactory logger.LogFactory) *BearerTokenAuthenticator {
	return &BearerTokenAuthenticator{
		source: source,
		Log:    logFactory("BearerTokenAuthenticator"),
	}
}

// NewStaticBearerTokenAuthenticator wraps a fixed token string in an oauth2
// token source.
func NewStaticBearerTokenAuthenticator(token string, logFactory logger.LogFactory) *BearerTokenAuthenticator {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewBearerTokenAuthenticator(source, logFactory)
}

func (a *BearerTokenAuthenticator) AuthenticateClient(client *retryablehttp.Client) (*retryablehttp.Client, error) {
	return client, nil
}

func (a *BearerTokenAuthenticator) AuthenticateRequest(h http.Header) (http.Header, error) {
	token, err := a.source.Token()
	if err != nil {
		return nil, fmt.Errorf("error obtaining bearer token: %w", err)
	}
	h.Set("Authorization", fmt.Sprintf("%s %s", token.Type(), token.AccessToken))
	return h, nil
}
