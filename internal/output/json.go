package output

import (
	"encoding/json"

	"github.com/starlens/starlens/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatStars renders a star list as JSON.
func (f *JSONFormatter) FormatStars(stars []core.StarredRepo) (string, error) {
	return f.marshal(stars)
}

// FormatCategories renders a category report as JSON.
func (f *JSONFormatter) FormatCategories(report *core.CategoryReport) (string, error) {
	if report == nil {
		return "", nil
	}
	return f.marshal(report)
}

// FormatSnapshots renders stored snapshots as JSON.
func (f *JSONFormatter) FormatSnapshots(snapshots []core.Snapshot) (string, error) {
	return f.marshal(snapshots)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
