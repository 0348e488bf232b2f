package core

import (
	"strings"
	"time"
)

// Repository is the subset of a GitHub repository payload that starlens
// tracks across backups, reports, and prune decisions.
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Owner       string    `json:"owner,omitempty"`
	Description string    `json:"description,omitempty"`
	HTMLURL     string    `json:"html_url,omitempty"`
	Language    string    `json:"language,omitempty"`
	Stargazers  int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Archived    bool      `json:"archived"`
	Fork        bool      `json:"fork"`
	Topics      []string  `json:"topics,omitempty"`
	PushedAt    time.Time `json:"pushed_at,omitempty"`
}

// StarredRepo pairs a repository with the moment it was starred.
type StarredRepo struct {
	StarredAt time.Time  `json:"starred_at"`
	Repo      Repository `json:"repo"`
}

// Snapshot describes one stored backup of a star list.
type Snapshot struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Note      string    `json:"note,omitempty"`
	RepoCount int       `json:"repo_count"`
	CreatedAt time.Time `json:"created_at"`
}

// RateBudgetRecord is the last server-reported rate budget persisted
// per endpoint host, surfaced by the rate-limit command.
type RateBudgetRecord struct {
	Endpoint   string    `json:"endpoint"`
	Capacity   int       `json:"capacity"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	ObservedAt time.Time `json:"observed_at"`
}

// CategoryReport groups starred repositories by matched category.
type CategoryReport struct {
	Account     string                   `json:"account,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
	Categories  map[string][]StarredRepo `json:"categories"`
	Order       []string                 `json:"-"`
}

// SplitFullName splits "owner/repo" into its parts.
func SplitFullName(fullName string) (owner string, repo string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(fullName), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
