package media

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Object key conventions:
//
//	{uuid}.{ext}            primary object
//	{uuid}.{sizeType}.{ext} image size variant
//	{uuid}.thumb.png        fixed preview
func primaryKey(id uuid.UUID, extension string) string {
	return id.String() + "." + extension
}

func variantKey(id uuid.UUID, sizeType, extension string) string {
	return fmt.Sprintf("%s.%s.%s", id.String(), sizeType, extension)
}

func thumbKey(id uuid.UUID) string {
	return id.String() + ".thumb.png"
}

func extensionFromMime(mimeType string) string {
	if _, ext, ok := strings.Cut(mimeType, "/"); ok {
		return ext
	}
	return mimeType
}

// splitPublicID breaks a public id like "uuid.s.png" into the key part
// ("uuid.s") and the extension ("png").
func splitPublicID(publicID string) (keyPart, extension string) {
	idx := strings.LastIndex(publicID, ".")
	if idx < 0 {
		return publicID, ""
	}
	return publicID[:idx], publicID[idx+1:]
}

// parsePublicID extracts the upload id and the optional size label from
// a public id's key part.
func parsePublicID(publicID string) (id uuid.UUID, sizeType, extension string, err error) {
	keyPart, extension := splitPublicID(publicID)
	idPart, sizeType, _ := strings.Cut(keyPart, ".")
	id, err = uuid.Parse(idPart)
	return id, sizeType, extension, err
}
