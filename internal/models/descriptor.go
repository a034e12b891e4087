package models

import "github.com/google/uuid"

// FileDescriptor is the in-flight record of one uploaded file. It is
// created when a multipart file part begins, mutated while bytes flush
// to the object store and post-write checks run, and settled once the
// ingestion batch returns. It is never persisted itself.
type FileDescriptor struct {
	ID         uuid.UUID   `json:"id"`
	Key        string      `json:"key"`
	Extension  string      `json:"extension"`
	MimeType   string      `json:"mimeType"`
	Filename   string      `json:"fileName"`
	Size       uint64      `json:"size"`
	IsSaved    bool        `json:"-"`
	Group      Group       `json:"group"`
	Bucket     Bucket      `json:"-"`
	Preview    *Preview    `json:"preview,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Error      *ErrorInfo  `json:"-"`
}

type Preview struct {
	URL string `json:"url,omitempty"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ErrorInfo is attached to a failed descriptor and surfaced once in the
// batch response. Stack is only populated in development.
type ErrorInfo struct {
	Status   int    `json:"status"`
	Code     string `json:"code,omitempty"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
	Stack    string `json:"stack,omitempty"`
	FileName string `json:"fileName,omitempty"`
}
