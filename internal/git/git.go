// Package git inspects the checkout the documentation sources live in.
package git

import (
	"errors"

	"github.com/go-git/go-git/v5"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// Checkout describes HEAD of a working tree.
type Checkout struct {
	// Branch is the short branch name, empty when HEAD is detached.
	Branch string
	Commit string
}

// Detached reports whether HEAD points at a commit rather than a branch.
func (c *Checkout) Detached() bool { return c.Branch == "" }

// Inspect opens the repository containing dir, searching parent directories
// for .git.
func Inspect(dir string) (*Checkout, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ferrors.NewError(ferrors.CategoryGit, "not a git checkout").
				WithContext("path", dir).
				WithCause(err).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "open repository").
			WithContext("path", dir).
			Build()
	}
	head, err := repo.Head()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "resolve HEAD").
			WithContext("path", dir).
			Build()
	}
	co := &Checkout{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		co.Branch = head.Name().Short()
	}
	return co, nil
}

// DetectBranch returns the branch checked out at dir, or fallback when dir is
// not in a repository or HEAD is detached.
func DetectBranch(dir, fallback string) string {
	co, err := Inspect(dir)
	if err != nil || co.Detached() {
		return fallback
	}
	return co.Branch
}
