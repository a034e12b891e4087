package media

import (
	"slices"

	"media-storage-backend/internal/models"
)

// Classifier maps a declared mime type to its bucket and group. The
// decision is made once per file at ingestion time and never revised.
type Classifier struct {
	table map[models.Group][]string
}

func NewClassifier(table map[models.Group][]string) *Classifier {
	return &Classifier{table: table}
}

// Classify is total: unknown mime types land in the tmp bucket/group
// with supported=false instead of failing.
func (c *Classifier) Classify(mimeType string) (models.Bucket, models.Group, bool) {
	for _, group := range []models.Group{models.GroupImages, models.GroupDocs, models.GroupVideos} {
		if slices.Contains(c.table[group], mimeType) {
			return groupBucket(group), group, true
		}
	}
	return models.BucketTmp, models.GroupTmp, false
}

// AllMimeTypes flattens the allow-list table.
func (c *Classifier) AllMimeTypes() []string {
	var all []string
	for _, group := range []models.Group{models.GroupImages, models.GroupDocs, models.GroupVideos} {
		all = append(all, c.table[group]...)
	}
	return all
}

func groupBucket(group models.Group) models.Bucket {
	switch group {
	case models.GroupImages:
		return models.BucketImages
	case models.GroupDocs:
		return models.BucketDocs
	case models.GroupVideos:
		return models.BucketVideos
	default:
		return models.BucketTmp
	}
}
