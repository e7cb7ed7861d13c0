package gitutil

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/pipewright/pipewright/common/models"
)

const testRemoteURL = "https://github.com/fabrikam/platform.git"

// newTestRepo creates an in-memory repository with one commit on the
// default branch and an origin remote.
func newTestRepo(t *testing.T) *git.Repository {
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{testRemoteURL},
	})
	require.NoError(t, err)

	commitTestFile(t, repo, "README.md", "# platform\n")
	return repo
}

func commitTestFile(t *testing.T, repo *git.Repository, name, contents string) plumbing.Hash {
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(wt.Filesystem, name, []byte(contents), 0644))
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func TestDetect(t *testing.T) {
	repo := newTestRepo(t)
	detected, err := detect(repo)
	require.NoError(t, err)
	require.Equal(t, "platform", detected.Name)
	require.Equal(t, testRemoteURL, detected.URL)
	require.Equal(t, "refs/heads/master", detected.Branch)
}

func TestDetectNormalizesSSHRemote(t *testing.T) {
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{"git@github.com:fabrikam/platform.git"},
	})
	require.NoError(t, err)
	commitTestFile(t, repo, "README.md", "# platform\n")

	detected, err := detect(repo)
	require.NoError(t, err)
	require.Equal(t, "platform", detected.Name)
	require.Equal(t, "https://github.com/fabrikam/platform.git", detected.URL)

	// A repository cloned over ssh must flow through spec validation and
	// infer the right repository type.
	spec := &models.PipelineSpec{
		ServiceName:  "frontend",
		PipelineName: "frontend",
		Organization: "fabrikam",
		Project:      "platform",
		Repository: models.Repository{
			Name:   detected.Name,
			URL:    detected.URL,
			Branch: models.NormalizeBranchRef(detected.Branch),
		},
		AgentQueue: models.DefaultAgentQueueName,
	}
	require.NoError(t, spec.Validate())
	require.Equal(t, models.RepoTypeGitHub, spec.Repository.Type())
}

func TestNormalizeRemoteURL(t *testing.T) {
	require.Equal(t, "https://github.com/fabrikam/platform.git",
		NormalizeRemoteURL("git@github.com:fabrikam/platform.git"))
	require.Equal(t, "https://github.com/fabrikam/platform.git",
		NormalizeRemoteURL("ssh://git@github.com:22/fabrikam/platform.git"))
	require.Equal(t, "https://ssh.dev.azure.com/v3/fabrikam/platform/platform",
		NormalizeRemoteURL("git@ssh.dev.azure.com:v3/fabrikam/platform/platform"))
	require.Equal(t, "https://github.com/fabrikam/platform.git",
		NormalizeRemoteURL("https://github.com/fabrikam/platform.git"))
	require.Equal(t, "platform", NormalizeRemoteURL("platform"))
}

func TestDetectPrefersOriginRemote(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "upstream",
		URLs: []string{"https://github.com/contoso/platform.git"},
	})
	require.NoError(t, err)

	detected, err := detect(repo)
	require.NoError(t, err)
	require.Equal(t, testRemoteURL, detected.URL)
}

func TestDetectNoRemotes(t *testing.T) {
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	commitTestFile(t, repo, "README.md", "# empty\n")

	_, err = detect(repo)
	require.ErrorIs(t, err, ErrNoRemotes)
}

func TestDetectDetachedHead(t *testing.T) {
	repo := newTestRepo(t)
	hash := commitTestFile(t, repo, "main.go", "package main\n")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: hash}))

	_, err = detect(repo)
	require.ErrorIs(t, err, ErrDetachedHead)
}

func TestDetectNotARepository(t *testing.T) {
	_, err := Detect(t.TempDir())
	require.ErrorIs(t, err, ErrNotARepository)
}

func TestRepoNameFromURL(t *testing.T) {
	require.Equal(t, "platform", RepoNameFromURL("https://github.com/fabrikam/platform.git"))
	require.Equal(t, "platform", RepoNameFromURL("git@github.com:fabrikam/platform.git"))
	require.Equal(t, "platform", RepoNameFromURL("https://dev.azure.com/fabrikam/platform/_git/platform"))
	require.Equal(t, "platform", RepoNameFromURL("platform"))
}
