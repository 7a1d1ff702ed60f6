package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/imgfetcher/internal/metadata"
	"github.com/nao1215/imgfetcher/internal/model"
)

// MetadataStep reads the EXIF metadata of saved images into the result.
type MetadataStep struct {
	logger *slog.Logger
}

// NewMetadataStep creates a MetadataStep.
func NewMetadataStep(logger *slog.Logger) *MetadataStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataStep{logger: logger}
}

// Name returns the step name.
func (s *MetadataStep) Name() string {
	return "metadata"
}

// Do extracts EXIF metadata. Images without EXIF are left without metadata.
func (s *MetadataStep) Do(_ context.Context, result *model.Result) error {
	if result.Kind != model.KindSaved || len(result.Body) == 0 {
		return nil
	}

	meta, err := metadata.Extract(result.Body)
	if err != nil {
		if errors.Is(err, metadata.ErrNoEXIF) {
			s.logger.Debug("no EXIF metadata", "filename", result.Filename)
			return nil
		}
		return err
	}

	result.Metadata = meta
	if meta.HasGPS {
		s.logger.Warn("image contains GPS coordinates", "path", result.Path)
	}
	return nil
}
