// Package media hands user images (avatars, message attachments) to an
// external object store and returns their public URLs.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// MaxImageBytes caps a single decoded upload.
const MaxImageBytes = 5 << 20

var (
	ErrEmptyImage    = errors.New("image is empty")
	ErrInvalidImage  = errors.New("image is not valid base64 data")
	ErrImageTooLarge = errors.New("image is too large")
	ErrNotAnImage    = errors.New("only image uploads are allowed")
)

// Folder groups uploads in the bucket.
type Folder string

const (
	FolderAvatars  Folder = "avatars"
	FolderMessages Folder = "messages"
)

// Uploader stores an image given as a data URI or bare base64 string.
type Uploader interface {
	Upload(ctx context.Context, folder Folder, data string) (string, error)
}

// Image is a decoded upload.
type Image struct {
	ContentType string
	Data        []byte
}

// Ext returns a file extension matching the content type, including the dot.
func (i Image) Ext() string {
	switch i.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, _ := mime.ExtensionsByType(i.ContentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// rasterTypes are the sniffed content types accepted as uploads. SVG and
// anything else a browser could execute never make it to the bucket.
var rasterTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// DecodeImage accepts "data:image/png;base64,...." or bare base64. The
// content type always comes from sniffing the bytes; a declared type must
// agree with it.
func DecodeImage(data string) (*Image, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrEmptyImage
	}

	var declared string
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, ErrInvalidImage
		}
		declared = strings.TrimSuffix(meta, ";base64")
		data = payload
	}

	if base64.StdEncoding.DecodedLen(len(data)) > MaxImageBytes+3 {
		return nil, ErrImageTooLarge
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	if len(raw) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	sniffed := http.DetectContentType(raw)
	if !rasterTypes[sniffed] {
		return nil, fmt.Errorf("%w: content is %s", ErrNotAnImage, sniffed)
	}
	if declared != "" {
		typ, _, err := mime.ParseMediaType(declared)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		if typ == "image/jpg" {
			typ = "image/jpeg"
		}
		if typ != sniffed {
			return nil, fmt.Errorf("%w: declared %s, content is %s", ErrNotAnImage, typ, sniffed)
		}
	}

	return &Image{ContentType: sniffed, Data: raw}, nil
}
