package gitutil

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

var (
	// ErrNotARepository is returned when the directory is not inside a git work tree.
	ErrNotARepository = errors.New("error directory is not inside a git repository")
	// ErrNoRemotes is returned when the repository has no remotes configured.
	ErrNoRemotes = errors.New("error git repository has no remotes configured")
	// ErrDetachedHead is returned when HEAD does not point at a branch.
	ErrDetachedHead = errors.New("error git repository HEAD is detached")
)

// DetectedRepo describes a repository discovered from a local git work tree.
type DetectedRepo struct {
	// Name is derived from the last path segment of the remote URL.
	Name string
	// URL is the fetch URL of the origin remote (or the first remote when
	// no origin is configured). SSH remotes are normalized to their https
	// form so the URL survives validation and repository-type inference.
	URL string
	// Branch is the fully qualified ref of the currently checked out branch.
	Branch string
}

// Detect discovers repository coordinates from the git work tree enclosing
// dir, so the user does not have to repeat on the command line what their
// checkout already knows. Callers treat any error as "flag required".
func Detect(dir string) (*DetectedRepo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotARepository
		}
		return nil, errors.Wrapf(err, "error opening git repository at %q", dir)
	}
	return detect(repo)
}

func detect(repo *git.Repository) (*DetectedRepo, error) {
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		if !errors.Is(err, git.ErrRemoteNotFound) {
			return nil, errors.Wrap(err, "error reading origin remote")
		}
		remotes, err := repo.Remotes()
		if err != nil {
			return nil, errors.Wrap(err, "error listing remotes")
		}
		if len(remotes) == 0 {
			return nil, ErrNoRemotes
		}
		remote = remotes[0]
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, ErrNoRemotes
	}
	remoteURL := urls[0]

	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "error resolving HEAD")
	}
	if !head.Name().IsBranch() {
		return nil, ErrDetachedHead
	}

	return &DetectedRepo{
		Name:   RepoNameFromURL(remoteURL),
		URL:    NormalizeRemoteURL(remoteURL),
		Branch: head.Name().String(),
	}, nil
}

// NormalizeRemoteURL converts ssh remote URLs to their https equivalent.
// Both the ssh:// scheme and the scp-like form (git@host:org/repo.git) are
// handled; any other URL is returned unchanged.
func NormalizeRemoteURL(remoteURL string) string {
	if u, err := url.Parse(remoteURL); err == nil && u.Scheme == "ssh" {
		return "https://" + u.Hostname() + u.Path
	}
	if strings.Contains(remoteURL, "://") {
		return remoteURL
	}
	at := strings.Index(remoteURL, "@")
	colon := strings.Index(remoteURL, ":")
	if at >= 0 && colon > at {
		host := remoteURL[at+1 : colon]
		path := strings.TrimPrefix(remoteURL[colon+1:], "/")
		return "https://" + host + "/" + path
	}
	return remoteURL
}

// RepoNameFromURL derives a repository name from the last path segment of a
// remote URL, stripping any ".git" suffix. Both https and scp-like ssh URLs
// (git@host:org/repo.git) are handled.
func RepoNameFromURL(remoteURL string) string {
	name := remoteURL
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}
