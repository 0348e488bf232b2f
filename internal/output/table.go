package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/starlens/starlens/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatStars renders a star list as a table.
func (f *TableFormatter) FormatStars(stars []core.StarredRepo) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Repository", "Language", "Stars", "Starred At", "Description"})

	for _, star := range stars {
		starredAt := "-"
		if !star.StarredAt.IsZero() {
			starredAt = star.StarredAt.UTC().Format("2006-01-02")
		}
		t.AppendRow(table.Row{
			star.Repo.FullName,
			languageLabel(star.Repo),
			star.Repo.Stargazers,
			starredAt,
			repoSummary(star.Repo),
		})
	}

	t.AppendFooter(table.Row{fmt.Sprintf("%d starred", len(stars)), "", "", "", ""})
	return t.Render(), nil
}

// FormatCategories renders a category report as one table per category.
func (f *TableFormatter) FormatCategories(report *core.CategoryReport) (string, error) {
	if report == nil {
		return "", nil
	}

	rendered := ""
	for _, name := range report.Order {
		repos := report.Categories[name]

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetTitle(fmt.Sprintf("%s (%d)", name, len(repos)))
		t.AppendHeader(table.Row{"Repository", "Language", "Stars"})
		for _, star := range repos {
			t.AppendRow(table.Row{star.Repo.FullName, languageLabel(star.Repo), star.Repo.Stargazers})
		}

		if rendered != "" {
			rendered += "\n"
		}
		rendered += t.Render() + "\n"
	}
	return rendered, nil
}

// FormatSnapshots renders stored snapshots as a table.
func (f *TableFormatter) FormatSnapshots(snapshots []core.Snapshot) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Account", "Repos", "Created", "Note"})

	for _, snap := range snapshots {
		t.AppendRow(table.Row{
			snap.ID,
			snap.Account,
			snap.RepoCount,
			snap.CreatedAt.UTC().Format(time.RFC3339),
			snap.Note,
		})
	}

	return t.Render(), nil
}
