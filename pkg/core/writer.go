/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Artifact writer. Owns the <input>-bad output directory and writes one
file per strategy, named by the strategy id, replacing any previous artifact of the
same name in one rename.
*/

package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// ArtifactExtension is appended to every strategy id
const ArtifactExtension = ".jpg"

// OutputDirFor returns the default artifact directory for an input file
func OutputDirFor(inputPath string) string {
	return inputPath + "-bad"
}

// ArtifactWriter writes corrupted copies into a single directory
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates dir if needed. An existing directory is reused.
func NewArtifactWriter(dir string) (*ArtifactWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOutputDirectoryUnwritable, dir, err)
	}
	return &ArtifactWriter{dir: dir}, nil
}

// Dir returns the output directory
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// PathFor returns the artifact path for a strategy id
func (w *ArtifactWriter) PathFor(strategyID string) string {
	return filepath.Join(w.dir, strategyID+ArtifactExtension)
}

// Write stores data as the artifact for strategyID and returns its path
func (w *ArtifactWriter) Write(strategyID string, data []byte) (string, error) {
	path := w.PathFor(strategyID)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOutputWriteFailed, path, err)
	}
	return path, nil
}
