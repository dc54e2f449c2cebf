package gitsrc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pkgbuilder/internal/logfields"
	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
	"git.home.luguber.info/inful/pkgbuilder/internal/retry"
)

// Client handles git source operations within a workspace directory.
type Client struct {
	workspaceDir string
	policy       retry.Policy
}

// NewClient creates a new source client. Checkouts are placed in
// workspaceDir/<package name>.
func NewClient(workspaceDir string, policy retry.Policy) *Client {
	return &Client{
		workspaceDir: workspaceDir,
		policy:       policy,
	}
}

// Clone clones a package source to the workspace, removing any previous checkout.
func (c *Client) Clone(ctx context.Context, pkg string, src recipe.Source) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, pkg)

	slog.Debug("Cloning source", logfields.URL(src.URL), logfields.Package(pkg), slog.String("branch", src.Branch), logfields.Path(repoPath))

	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("failed to remove existing checkout: %w", err)
	}

	cloneOptions := &git.CloneOptions{
		URL: src.URL,
	}

	if src.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		cloneOptions.SingleBranch = true
	}

	if src.Auth != nil {
		auth, err := c.getAuthentication(src.Auth)
		if err != nil {
			return "", fmt.Errorf("failed to setup authentication: %w", err)
		}
		cloneOptions.Auth = auth
	}

	path, err := c.withRetry("clone", pkg, func() (string, error) {
		repository, err := git.PlainCloneContext(ctx, repoPath, false, cloneOptions)
		if err != nil {
			return "", classifyRemoteError("clone", src.URL, err)
		}

		if ref, headErr := repository.Head(); headErr == nil {
			slog.Info("Source cloned",
				logfields.Package(pkg),
				logfields.URL(src.URL),
				slog.String("commit", ref.Hash().String()[:8]))
		}
		return repoPath, nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Update updates an existing checkout or clones if it doesn't exist.
func (c *Client) Update(ctx context.Context, pkg string, src recipe.Source) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, pkg)

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		slog.Debug("Updating existing checkout", logfields.Package(pkg), logfields.Path(repoPath))
		return c.updateExisting(ctx, repoPath, pkg, src)
	}

	slog.Debug("Checkout doesn't exist, cloning", logfields.Package(pkg))
	return c.Clone(ctx, pkg, src)
}

// updateExisting pulls the latest changes into an existing checkout.
func (c *Client) updateExisting(ctx context.Context, repoPath, pkg string, src recipe.Source) (string, error) {
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open checkout: %w", err)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOptions := &git.PullOptions{
		RemoteName: "origin",
	}

	if src.Auth != nil {
		auth, err := c.getAuthentication(src.Auth)
		if err != nil {
			return "", fmt.Errorf("failed to setup authentication: %w", err)
		}
		pullOptions.Auth = auth
	}

	return c.withRetry("pull", pkg, func() (string, error) {
		err := worktree.PullContext(ctx, pullOptions)
		if err != nil && err != git.NoErrAlreadyUpToDate {
			return "", classifyRemoteError("pull", src.URL, err)
		}

		if err == git.NoErrAlreadyUpToDate {
			slog.Info("Source already up to date", logfields.Package(pkg))
		} else if ref, headErr := repository.Head(); headErr == nil {
			slog.Info("Source updated",
				logfields.Package(pkg),
				slog.String("commit", ref.Hash().String()[:8]))
		}
		return repoPath, nil
	})
}

// EnsureWorkspace creates the workspace directory if it doesn't exist.
func (c *Client) EnsureWorkspace() error {
	if err := os.MkdirAll(c.workspaceDir, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return nil
}
