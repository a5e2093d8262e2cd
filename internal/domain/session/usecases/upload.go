package usecases

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faust217/OJL-MTAT/internal/backend"
)

// Analyzer is the backend surface of the full-media upload path.
type Analyzer interface {
	Analyze(ctx context.Context, file io.Reader, filename string) (*backend.AnalysisResult, error)
}

// Upload sends a complete media file for analysis.
type Upload struct {
	Backend Analyzer
}

// Execute uploads the file at path and returns the backend's analysis.
func (u *Upload) Execute(ctx context.Context, path string) (*backend.AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening media file: %w", err)
	}
	defer f.Close()

	res, err := u.Backend.Analyze(ctx, f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if res.Type != "audio" && res.Type != "video" {
		return nil, fmt.Errorf("unknown analysis result type %q", res.Type)
	}
	return res, nil
}
