package models

// BuildStatus mirrors the vendor's build status strings.
type BuildStatus string

const (
	BuildStatusNone       BuildStatus = "none"
	BuildStatusNotStarted BuildStatus = "notStarted"
	BuildStatusInProgress BuildStatus = "inProgress"
	BuildStatusCancelling BuildStatus = "cancelling"
	BuildStatusPostponed  BuildStatus = "postponed"
	BuildStatusCompleted  BuildStatus = "completed"
)

func (s BuildStatus) String() string {
	return string(s)
}

// Finished returns true once the vendor will make no further status
// transitions for the build.
func (s BuildStatus) Finished() bool {
	return s == BuildStatusCompleted
}

// BuildResult mirrors the vendor's build result strings. The result is only
// meaningful once the build status is completed.
type BuildResult string

const (
	BuildResultNone               BuildResult = "none"
	BuildResultSucceeded          BuildResult = "succeeded"
	BuildResultPartiallySucceeded BuildResult = "partiallySucceeded"
	BuildResultFailed             BuildResult = "failed"
	BuildResultCanceled           BuildResult = "canceled"
)

func (r BuildResult) String() string {
	return string(r)
}

func (r BuildResult) Succeeded() bool {
	return r == BuildResultSucceeded
}
