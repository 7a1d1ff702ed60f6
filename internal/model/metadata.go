package model

// ImageMetadata contains the EXIF fields read from a saved image.
type ImageMetadata struct {
	// Make is the camera manufacturer.
	Make string `json:"make,omitempty"`

	// Model is the camera model.
	Model string `json:"model,omitempty"`

	// DateTime is when the image was taken, as recorded by the camera.
	DateTime string `json:"datetime,omitempty"`

	// Software is the editing software that last wrote the file.
	Software string `json:"software,omitempty"`

	// HasGPS is true if the image carries GPS coordinates.
	HasGPS bool `json:"has_gps"`

	// Tags are all formatted EXIF tags by name.
	Tags map[string]string `json:"tags,omitempty"`
}

// IsEmpty reports whether no EXIF data was found.
func (m *ImageMetadata) IsEmpty() bool {
	return m == nil || (len(m.Tags) == 0 && !m.HasGPS)
}
