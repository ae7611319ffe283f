package storage

import "net/http"

// imageExtensions lists the raster formats accepted for listing photos.
var imageExtensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
}

// DetectImage sniffs content and returns its MIME type and file extension.
// ok is false when the content is not an accepted image.
func DetectImage(content []byte) (mimeType, ext string, ok bool) {
	mimeType = http.DetectContentType(content)
	ext, ok = imageExtensions[mimeType]
	return mimeType, ext, ok
}
