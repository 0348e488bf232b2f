// Package stars exposes starred-repository operations on top of the
// forge API client: enumeration, star/unstar mutations, and prune
// candidate selection.
package stars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/core"
	"github.com/starlens/starlens/internal/core/forge"
)

// acceptStarJSON asks GitHub to wrap each repository with its
// starred_at timestamp.
const acceptStarJSON = "application/vnd.github.star+json"

// Service drives star operations for one account.
type Service struct {
	Client   *forge.Client
	PageSize int
	Logger   *zap.Logger
}

// starredEntry is the wire shape of one starred repository under the
// star+json media type.
type starredEntry struct {
	StarredAt time.Time `json:"starred_at"`
	Repo      struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		FullName    string    `json:"full_name"`
		Description string    `json:"description"`
		HTMLURL     string    `json:"html_url"`
		Language    string    `json:"language"`
		Stargazers  int       `json:"stargazers_count"`
		Forks       int       `json:"forks_count"`
		Archived    bool      `json:"archived"`
		Fork        bool      `json:"fork"`
		Topics      []string  `json:"topics"`
		PushedAt    time.Time `json:"pushed_at"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repo"`
}

// ListStarred enumerates every starred repository. An empty user lists
// the stars of the authenticated account.
func (s *Service) ListStarred(ctx context.Context, user string) ([]core.StarredRepo, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("stars service is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path := "/user/starred"
	if value := strings.TrimSpace(user); value != "" {
		path = "/users/" + url.PathEscape(value) + "/starred"
	}

	var stars []core.StarredRepo

	p := s.Client.Paginate(forge.Request{Path: path, Accept: acceptStarJSON}, s.PageSize)
	for p.Next(ctx) {
		for _, raw := range p.Batch() {
			star, err := decodeStarred(raw)
			if err != nil {
				return nil, fmt.Errorf("decode starred repository: %w", err)
			}
			stars = append(stars, star)
		}
		s.logger().Debug("fetched starred page", zap.Int("total", len(stars)))
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("list starred repositories: %w", err)
	}

	return stars, nil
}

// Star stars one repository ("owner/repo"). Already-starred is a no-op
// on the API side.
func (s *Service) Star(ctx context.Context, fullName string) error {
	return s.mutate(ctx, "PUT", fullName)
}

// Unstar removes the star from one repository.
func (s *Service) Unstar(ctx context.Context, fullName string) error {
	return s.mutate(ctx, "DELETE", fullName)
}

// IsStarred reports whether the authenticated user starred fullName.
func (s *Service) IsStarred(ctx context.Context, fullName string) (bool, error) {
	if s == nil || s.Client == nil {
		return false, errors.New("stars service is not configured")
	}

	path, err := starPath(fullName)
	if err != nil {
		return false, err
	}

	_, err = s.Client.Do(ctx, forge.Request{Path: path})
	if err != nil {
		if forge.KindOf(err) == forge.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) mutate(ctx context.Context, method, fullName string) error {
	if s == nil || s.Client == nil {
		return errors.New("stars service is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := starPath(fullName)
	if err != nil {
		return err
	}

	if _, err := s.Client.Do(ctx, forge.Request{Method: method, Path: path}); err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(method), fullName, err)
	}
	return nil
}

func (s *Service) logger() *zap.Logger {
	if s != nil && s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

func starPath(fullName string) (string, error) {
	owner, repo, ok := core.SplitFullName(fullName)
	if !ok {
		return "", fmt.Errorf("invalid repository name: %q (want owner/repo)", fullName)
	}
	return "/user/starred/" + url.PathEscape(owner) + "/" + url.PathEscape(repo), nil
}

func decodeStarred(raw json.RawMessage) (core.StarredRepo, error) {
	var entry starredEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return core.StarredRepo{}, err
	}

	return core.StarredRepo{
		StarredAt: entry.StarredAt,
		Repo: core.Repository{
			ID:          entry.Repo.ID,
			Name:        entry.Repo.Name,
			FullName:    entry.Repo.FullName,
			Owner:       entry.Repo.Owner.Login,
			Description: entry.Repo.Description,
			HTMLURL:     entry.Repo.HTMLURL,
			Language:    entry.Repo.Language,
			Stargazers:  entry.Repo.Stargazers,
			Forks:       entry.Repo.Forks,
			Archived:    entry.Repo.Archived,
			Fork:        entry.Repo.Fork,
			Topics:      entry.Repo.Topics,
			PushedAt:    entry.Repo.PushedAt,
		},
	}, nil
}

// PruneOptions selects which starred repositories are prune candidates.
type PruneOptions struct {
	Archived  bool
	OlderThan time.Duration
	Now       time.Time
}

// PruneCandidates filters stars down to the set the prune command would
// unstar. With OlderThan set, repositories without a push inside the
// window qualify; Archived adds archived repositories regardless of
// activity.
func PruneCandidates(stars []core.StarredRepo, opts PruneOptions) []core.StarredRepo {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var candidates []core.StarredRepo
	for _, star := range stars {
		if opts.Archived && star.Repo.Archived {
			candidates = append(candidates, star)
			continue
		}
		if opts.OlderThan > 0 && !star.Repo.PushedAt.IsZero() && now.Sub(star.Repo.PushedAt) > opts.OlderThan {
			candidates = append(candidates, star)
		}
	}
	return candidates
}
