package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/types"
)

// ArtifactWriter mirrors generated code to an output directory. This is a
// convenience copy for operators; the stored WorkflowResult remains the
// system of record.
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a writer rooted at outputDir
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{outputDir: outputDir}
}

// Write saves the generated document under its timestamped filename
func (w *ArtifactWriter) Write(code *types.GeneratedCode) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.outputDir, code.Filename)
	if err := os.WriteFile(path, []byte(code.Code), 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	log.WithField("file", path).Info("Generated code artifact written")
	return path, nil
}
