package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepos creates a work repo with an initial commit and a bare remote
// it pushes to over the filesystem.
func newTestRepos(t *testing.T) (workDir, bareDir string) {
	t.Helper()
	workDir = t.TempDir()
	bareDir = t.TempDir()

	_, err := git.PlainInit(bareDir, true)
	require.NoError(t, err)

	repo, err := git.PlainInit(workDir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{bareDir},
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "README.md"), []byte("artifacts\n"), 0o644))
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("README.md")
	require.NoError(t, err)
	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@localhost", When: time.Now()},
	})
	require.NoError(t, err)

	return workDir, bareDir
}

func newTestPublisher(t *testing.T, workDir, publicBaseURL string) *Publisher {
	t.Helper()
	pub, err := NewPublisher(&Config{
		RepoPath:      workDir,
		RemoteName:    "origin",
		PublicBaseURL: publicBaseURL,
		Timeout:       5 * time.Second,
		MaxRetries:    1,
		RetryDelay:    10 * time.Millisecond,
	})
	require.NoError(t, err)
	return pub
}

func TestPublishPushesAndReturnsPublicURL(t *testing.T) {
	workDir, bareDir := newTestRepos(t)

	artifact := filepath.Join(workDir, "voice_note.ogg")
	require.NoError(t, os.WriteFile(artifact, []byte("ogg bytes"), 0o644))

	pub := newTestPublisher(t, workDir, "https://example.github.io/verses/")
	url, err := pub.Publish(context.Background(), artifact, "Add voice note for +15551234567")
	require.NoError(t, err)
	assert.Equal(t, "https://example.github.io/verses/voice_note.ogg", url)

	// Remote received the commit.
	remote, err := git.PlainOpen(bareDir)
	require.NoError(t, err)

	work, err := git.PlainOpen(workDir)
	require.NoError(t, err)
	head, err := work.Head()
	require.NoError(t, err)

	found := false
	refs, err := remote.References()
	require.NoError(t, err)
	refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Hash() == head.Hash() {
			found = true
		}
		return nil
	})
	assert.True(t, found, "pushed commit not found on remote")

	commit, err := work.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Add voice note for +15551234567", commit.Message)
}

func TestPublishWithoutPublicBaseURL(t *testing.T) {
	workDir, _ := newTestRepos(t)

	artifact := filepath.Join(workDir, "twiml_verse_+15551234567.xml")
	require.NoError(t, os.WriteFile(artifact, []byte("<Response/>"), 0o644))

	pub := newTestPublisher(t, workDir, "")
	url, err := pub.Publish(context.Background(), artifact, "Add TwiML for call to +15551234567")
	assert.ErrorIs(t, err, ErrNoPublicURL)
	assert.Empty(t, url)
}

func TestPublishRejectsArtifactOutsideRepo(t *testing.T) {
	workDir, _ := newTestRepos(t)

	outside := filepath.Join(t.TempDir(), "voice_note.ogg")
	require.NoError(t, os.WriteFile(outside, []byte("ogg bytes"), 0o644))

	pub := newTestPublisher(t, workDir, "https://example.github.io/verses")
	_, err := pub.Publish(context.Background(), outside, "Add voice note")
	assert.Error(t, err)
}
