package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Group is the semantic category an uploaded file is classified into.
// The set is closed; switches over Group keep a default branch that
// rejects unknown values instead of guessing.
type Group string

const (
	GroupImages Group = "images"
	GroupDocs   Group = "docs"
	GroupVideos Group = "videos"
	GroupTmp    Group = "tmp"
	GroupAny    Group = "any"
)

// Bucket identifies a logical object-store bucket. The mapping to the
// physical bucket name lives in config.
type Bucket string

const (
	BucketImages Bucket = "images"
	BucketDocs   Bucket = "docs"
	BucketVideos Bucket = "videos"
	BucketTmp    Bucket = "tmp"
)

type Upload struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	IsReady      bool
	Group        Group
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    sql.NullTime
}

// Image is one resized variant of an uploaded image, keyed by
// (UploadID, SizeType). SizeType is a size label such as s, m, l or thumb.
type Image struct {
	UploadID  uuid.UUID
	SizeType  string
	MimeType  string
	Width     int
	Height    int
	CreatedAt time.Time
}

type Document struct {
	UploadID  uuid.UUID
	MimeType  string
	CreatedAt time.Time
}

type Video struct {
	UploadID  uuid.UUID
	MimeType  string
	CreatedAt time.Time
}
