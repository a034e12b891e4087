package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type UploadResponse struct {
	Files  []FileDescriptor `json:"files"`
	Errors []ErrorInfo      `json:"errors"`
}

// MediaView is the public view of one stored media object, returned by
// the show endpoint.
type MediaView struct {
	ID         string      `json:"id"`
	MimeType   string      `json:"mimeType"`
	FileName   string      `json:"fileName,omitempty"`
	Size       uint64      `json:"size"`
	Preview    *Preview    `json:"preview,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

type ImportURLsResponse struct {
	IDs []string `json:"ids"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
