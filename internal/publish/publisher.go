package publish

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/prom"
	"github.com/pkg/errors"
)

var (
	// ErrNoPublicURL means the artifact was pushed but no public base url is
	// configured, so a reachable address cannot be derived.
	ErrNoPublicURL = errors.New("awaiting public URL configuration")
)

type Config struct {
	RepoPath      string
	RemoteName    string
	AccessToken   string
	PublicBaseURL string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration

	AuthorName  string
	AuthorEmail string
}

// Publisher commits delivery artifacts into a static-hosting repository and
// pushes them, so Twilio can fetch media and TwiML over plain HTTPS.
type Publisher struct {
	config *Config
}

func NewPublisher(config *Config) (*Publisher, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.RepoPath == "" {
		return nil, errors.New("repo path is required")
	}
	if config.RemoteName == "" {
		config.RemoteName = "origin"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if config.AuthorName == "" {
		config.AuthorName = "verse-gateway"
	}
	if config.AuthorEmail == "" {
		config.AuthorEmail = "verse-gateway@localhost"
	}
	return &Publisher{config: config}, nil
}

// Publish commits localPath and pushes it to the remote. On success it
// returns the artifact's public address, or ErrNoPublicURL when no public
// base url is configured.
func (p *Publisher) Publish(ctx context.Context, localPath, message string) (string, error) {
	startTime := time.Now()
	defer func() {
		prom.ObservePublishDuration(time.Since(startTime).Seconds())
	}()

	rel, err := p.relPath(localPath)
	if err != nil {
		return "", err
	}

	repo, err := git.PlainOpen(p.config.RepoPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open publish repo")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "failed to open worktree")
	}

	if _, err := worktree.Add(rel); err != nil {
		return "", errors.Wrapf(err, "failed to stage %s", rel)
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  p.config.AuthorName,
			Email: p.config.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to commit artifact")
	}

	if err := p.push(ctx, repo); err != nil {
		return "", err
	}

	logger.Info("Artifact published", "file", rel, "message", message)

	if p.config.PublicBaseURL == "" {
		return "", ErrNoPublicURL
	}
	return strings.TrimRight(p.config.PublicBaseURL, "/") + "/" + filepath.ToSlash(rel), nil
}

func (p *Publisher) push(ctx context.Context, repo *git.Repository) error {
	head, err := repo.Head()
	if err != nil {
		return errors.Wrap(err, "failed to resolve HEAD")
	}
	refSpec := config.RefSpec(head.Name() + ":" + head.Name())

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay * time.Duration(attempt)):
			}
		}

		pushCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		err := repo.PushContext(pushCtx, &git.PushOptions{
			RemoteName: p.config.RemoteName,
			RefSpecs:   []config.RefSpec{refSpec},
			Auth:       p.auth(),
		})
		cancel()

		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}

		logger.Warn("Push failed, retrying", "error", err, "remote", p.config.RemoteName, "attempt", attempt+1)
		lastErr = err
	}
	return errors.Wrapf(lastErr, "push failed after %d attempts", p.config.MaxRetries+1)
}

func (p *Publisher) auth() transport.AuthMethod {
	if p.config.AccessToken == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "git", Password: p.config.AccessToken}
}

func (p *Publisher) relPath(localPath string) (string, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve artifact path")
	}
	root, err := filepath.Abs(p.config.RepoPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve repo path")
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Errorf("artifact %s is outside the publish repo", localPath)
	}
	return rel, nil
}
