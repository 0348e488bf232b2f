package output

import (
	"fmt"
	"strings"

	"github.com/starlens/starlens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders starlens artifacts.
type Formatter interface {
	FormatStars(stars []core.StarredRepo) (string, error)
	FormatCategories(report *core.CategoryReport) (string, error)
	FormatSnapshots(snapshots []core.Snapshot) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func repoSummary(repo core.Repository) string {
	description := strings.TrimSpace(repo.Description)
	if len(description) > 80 {
		description = description[:77] + "..."
	}
	return description
}

func languageLabel(repo core.Repository) string {
	if repo.Language == "" {
		return "-"
	}
	return repo.Language
}
