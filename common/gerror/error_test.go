package gerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := NewErrAlreadyExists("pipeline already exists")
	err = err.Wrap(fmt.Errorf("i'm a scary internal error"))
	require.Equal(t, "pipeline already exists: i'm a scary internal error", err.Error())
	require.Equal(t, "pipeline already exists", err.Message())

	err = err.Detail("pipeline", "frontend")
	require.Equal(t, "pipeline already exists [pipeline=frontend]: i'm a scary internal error", err.Error())
	require.Equal(t, "pipeline already exists", err.Message())

	err = err.Wrap(NewErrNotFound("project does not exist").Detail("project", "platform").Wrap(fmt.Errorf("i'm a scary internal error")))
	require.Equal(t, "pipeline already exists [pipeline=frontend]: project does not exist [project=platform]: i'm a scary internal error", err.Error())
	require.Equal(t, "pipeline already exists", err.Message())
}

func TestErrorHTTPStatusCode(t *testing.T) {
	err := NewErrHttpOperationFailed("vendor rejected request", http.StatusBadRequest, nil)
	require.True(t, IsHttpOperationFailed(err))
	require.True(t, HasHTTPStatusCode(err, http.StatusBadRequest))
	require.False(t, HasHTTPStatusCode(err, http.StatusNotFound))
}

func TestMultiError(t *testing.T) {
	// Compose a multierror with our tested error in the middle
	var results *multierror.Error

	results = multierror.Append(results, fmt.Errorf("error 1: %w", errors.New("1")))
	results = multierror.Append(results, NewErrNotFound("definition not found").Wrap(errors.New("2")))
	results = multierror.Append(results, fmt.Errorf("error 3: %w", errors.New("3")))

	// Assert that our Is chaining returns an error in the middle of the chain
	err := results.ErrorOrNil()
	require.True(t, IsNotFound(err))

	// Wrap up the above error with another multierror
	var outerResults *multierror.Error
	outerResults = multierror.Append(err, fmt.Errorf("outer error 1: %w", errors.New("11")))

	// And assert our Is chaining returns the error we are after.
	outerErr := outerResults.ErrorOrNil()
	require.True(t, IsNotFound(outerErr))
}
