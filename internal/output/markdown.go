package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/starlens/starlens/internal/core"
)

// MarkdownFormatter renders results as markdown.
type MarkdownFormatter struct{}

// FormatStars renders a star list as a markdown table.
func (f *MarkdownFormatter) FormatStars(stars []core.StarredRepo) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Starred repositories (%d)\n\n", len(stars)))
	sb.WriteString("| Repository | Language | Stars | Description |\n")
	sb.WriteString("|------------|----------|-------|-------------|\n")

	for _, star := range stars {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
			repoLink(star.Repo),
			escapeMarkdownCell(languageLabel(star.Repo)),
			star.Repo.Stargazers,
			escapeMarkdownCell(repoSummary(star.Repo)),
		))
	}

	return sb.String(), nil
}

// FormatCategories renders a category report as a markdown document
// with one section per category.
func (f *MarkdownFormatter) FormatCategories(report *core.CategoryReport) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("# Starred repositories by category\n")
	if report.Account != "" {
		sb.WriteString(fmt.Sprintf("\nAccount: %s\n", escapeMarkdownCell(report.Account)))
	}

	for _, name := range report.Order {
		repos := report.Categories[name]
		sb.WriteString(fmt.Sprintf("\n## %s (%d)\n\n", escapeMarkdownCell(name), len(repos)))
		for _, star := range repos {
			line := fmt.Sprintf("- %s", repoLink(star.Repo))
			if summary := repoSummary(star.Repo); summary != "" {
				line += " - " + escapeMarkdownCell(summary)
			}
			sb.WriteString(line + "\n")
		}
	}

	return sb.String(), nil
}

// FormatSnapshots renders stored snapshots as a markdown table.
func (f *MarkdownFormatter) FormatSnapshots(snapshots []core.Snapshot) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Snapshots\n\n")
	sb.WriteString("| ID | Account | Repos | Created | Note |\n")
	sb.WriteString("|----|---------|-------|---------|------|\n")

	for _, snap := range snapshots {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
			escapeMarkdownCell(snap.ID),
			escapeMarkdownCell(snap.Account),
			snap.RepoCount,
			snap.CreatedAt.UTC().Format(time.RFC3339),
			escapeMarkdownCell(snap.Note),
		))
	}

	return sb.String(), nil
}

func repoLink(repo core.Repository) string {
	name := escapeMarkdownCell(repo.FullName)
	if repo.HTMLURL == "" {
		return name
	}
	return fmt.Sprintf("[%s](%s)", name, repo.HTMLURL)
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
