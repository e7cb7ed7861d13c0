package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/pipewright/pipewright/azureapi/documents"
	"github.com/pipewright/pipewright/common/models"
)

// buildPollInterval is how often WaitForBuild polls the vendor for status.
const buildPollInterval = 5 * time.Second

// WaitForBuild polls a build until the vendor reports it completed, logging
// status transitions along the way. Returns the final build document;
// callers decide how to treat a non-succeeded result. Cancelling the
// context aborts the wait.
func (s *Service) WaitForBuild(ctx context.Context, project string, buildID int) (*documents.Build, error) {
	lastStatus := models.BuildStatusNone
	for {
		build, err := s.client.GetBuild(ctx, project, buildID)
		if err != nil {
			return nil, fmt.Errorf("error polling build %d: %w", buildID, err)
		}
		status := models.BuildStatus(build.Status)
		if status != lastStatus {
			s.Infof("Build %s is %s", build.BuildNumber, status)
			lastStatus = status
		}
		if status.Finished() {
			return build, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.clk.After(buildPollInterval):
		}
	}
}
