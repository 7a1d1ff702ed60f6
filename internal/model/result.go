package model

// Result records what happened to one URL.
type Result struct {
	// URL is the requested URL, as given.
	URL string `json:"url"`

	// Kind is the outcome.
	Kind Kind `json:"kind"`

	// Filename is the destination name derived from the URL.
	// Empty when the request failed before the name was derived.
	Filename string `json:"filename,omitempty"`

	// Path is where the image was written. Only set for KindSaved.
	Path string `json:"path,omitempty"`

	// ContentType is the declared Content-Type of the response.
	ContentType string `json:"content_type,omitempty"`

	// Digest is the hex content digest. Set for KindSaved and KindDuplicate.
	Digest string `json:"digest,omitempty"`

	// Size is the body size in bytes. Set for KindSaved and KindDuplicate.
	Size int64 `json:"size,omitempty"`

	// Overwrote is true when a saved image replaced an existing file of the same name.
	Overwrote bool `json:"overwrote,omitempty"`

	// Err is the failure cause for KindNetworkError and KindSaveError.
	Err error `json:"-"`

	// Error is the text of Err, kept for serialization.
	Error string `json:"error,omitempty"`

	// Metadata holds EXIF fields of a saved image, when extraction is enabled.
	Metadata *ImageMetadata `json:"metadata,omitempty"`

	// Body holds the downloaded bytes until post-fetch steps have run.
	Body []byte `json:"-"`
}
