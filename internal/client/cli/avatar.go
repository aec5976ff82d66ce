package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/vedran77/chatty/internal/media"
)

var errNotAnImage = errors.New("file is not an image")

// imageDataURI reads path and encodes it as a data URI, the form the
// server accepts for avatars and message images.
func imageDataURI(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > media.MaxImageBytes {
		return "", fmt.Errorf("%s is %d bytes, the limit is %d: %w", path, info.Size(), media.MaxImageBytes, media.ErrImageTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s: %w", path, errNotAnImage)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
