package metadata

import (
	"errors"
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/imgfetcher/internal/model"
)

// ErrNoEXIF is returned when the image carries no EXIF block.
var ErrNoEXIF = errors.New("no EXIF data")

// Extract parses the EXIF block of an image and returns its tags.
func Extract(data []byte) (*model.ImageMetadata, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, ErrNoEXIF
		}
		return nil, fmt.Errorf("failed to locate EXIF data: %w", err)
	}
	if rawExif == nil {
		return nil, ErrNoEXIF
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXIF data: %w", err)
	}

	meta := &model.ImageMetadata{
		Tags: make(map[string]string, len(entries)),
	}

	for _, entry := range entries {
		tagName := entry.TagName
		value := strings.TrimSpace(entry.Formatted)

		if _, ok := meta.Tags[tagName]; !ok {
			meta.Tags[tagName] = value
		}

		switch tagName {
		case "Make":
			meta.Make = value
		case "Model":
			meta.Model = value
		case "DateTimeOriginal":
			meta.DateTime = value
		case "DateTime":
			if meta.DateTime == "" {
				meta.DateTime = value
			}
		case "Software", "ProcessingSoftware":
			if meta.Software == "" {
				meta.Software = value
			}
		}

		if strings.HasPrefix(tagName, "GPS") && tagName != "GPSVersionID" {
			meta.HasGPS = true
		}
	}

	return meta, nil
}
