package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starlens/starlens/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

// registerOutputFlags adds the shared rendering flags to a command.
func registerOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-format", "", "output format: table, json, markdown (default from config)")
	cmd.Flags().String("out", "", "write output to a file instead of stdout (\"-\" for stdout)")
}

func resolveFormatter(cmd *cobra.Command) (output.Formatter, error) {
	value, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(value) == "" {
		value = appConfig.Output.Format
	}
	format, err := output.ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format), nil
}

func resolveSink(cmd *cobra.Command) (*outputSink, error) {
	path, err := cmd.Flags().GetString("out")
	if err != nil {
		return nil, err
	}
	return openSink(path)
}

func openSink(path string) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: os.Stdout, close: func() error { return nil }, path: "-"}, nil
	}

	if dir := filepath.Dir(trimmed); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

// emit renders through the formatter and writes to the sink, closing it.
func emit(sink *outputSink, rendered string, err error) error {
	if err != nil {
		_ = sink.close() // nolint:errcheck // already failing
		return err
	}
	if _, err := io.WriteString(sink.writer, rendered); err != nil {
		_ = sink.close() // nolint:errcheck // already failing
		return err
	}
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Fprintln(sink.writer)
	}
	return sink.close()
}
