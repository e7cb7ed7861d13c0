package models

import (
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// RepoType identifies the kind of repository a build definition is linked
// to, using the repository type names Azure DevOps understands.
type RepoType string

const (
	// RepoTypeTfsGit is a git repository hosted in Azure Repos.
	RepoTypeTfsGit RepoType = "TfsGit"
	// RepoTypeGitHub is a repository hosted on github.com.
	RepoTypeGitHub RepoType = "GitHub"
	// RepoTypeGit is any other git repository reachable by URL.
	RepoTypeGit RepoType = "Git"
)

func (t RepoType) String() string {
	return string(t)
}

// DefaultBranchRef is the branch a pipeline builds when none is specified
// and none can be detected from a local working tree.
const DefaultBranchRef = "refs/heads/main"

// Repository identifies the source repository a pipeline builds.
type Repository struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Branch string `json:"branch"`
}

// Type infers the Azure DevOps repository type from the repository URL host.
func (r *Repository) Type() RepoType {
	u, err := url.Parse(r.URL)
	if err != nil {
		return RepoTypeGit
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "dev.azure.com" || host == "ssh.dev.azure.com" || strings.HasSuffix(host, ".visualstudio.com"):
		return RepoTypeTfsGit
	case host == "github.com":
		return RepoTypeGitHub
	default:
		return RepoTypeGit
	}
}

func (r *Repository) Valid() bool {
	return r.Validate() == nil
}

func (r *Repository) Validate() error {
	var result *multierror.Error
	if r.Name == "" {
		result = multierror.Append(result, errors.New("error repository name must be set"))
	}
	if r.URL == "" {
		result = multierror.Append(result, errors.New("error repository url must be set"))
	} else if _, err := url.ParseRequestURI(r.URL); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "error repository url %q is not a valid url", r.URL))
	}
	if r.Branch != "" && !strings.HasPrefix(r.Branch, "refs/") {
		result = multierror.Append(result, errors.Errorf("error repository branch %q must be a fully qualified ref", r.Branch))
	}
	return result.ErrorOrNil()
}

// NormalizeBranchRef converts a bare branch name like "main" into a fully
// qualified git ref like "refs/heads/main". Already-qualified refs are
// returned unchanged, and an empty name yields DefaultBranchRef.
func NormalizeBranchRef(branch string) string {
	if branch == "" {
		return DefaultBranchRef
	}
	if strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}
