package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greenantix/llmdiver/internal/config"
)

// DumpSource supplies the aggregated source dump for a project. Producing
// the dump is the job of an external repository-flattening tool; this
// core only consumes its output.
type DumpSource interface {
	Read(ctx context.Context, project config.Project) (string, error)
}

// FileDumpSource reads the dump the external flattener leaves on disk at
// the project's configured dump path.
type FileDumpSource struct{}

// DefaultDumpName is the dump location relative to a project root when no
// dump_path is configured.
const DefaultDumpName = ".llmdiver/dump.md"

func (FileDumpSource) Read(ctx context.Context, project config.Project) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := project.DumpPath
	if path == "" {
		path = filepath.Join(project.RootPath, filepath.FromSlash(DefaultDumpName))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read dump for %s: %w", project.Name, err)
	}
	return string(data), nil
}
