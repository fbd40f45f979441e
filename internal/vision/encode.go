package vision

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/cinelog/ticket-scanner/constants"
)

// encodedImage is a ticket image prepared for transport. Data keeps the raw
// bytes for SDKs that encode themselves; Base64 serves the raw-HTTP and
// data-URL envelopes.
type encodedImage struct {
	Base64 string
	MIME   string
	Data   []byte
	Bytes  int
}

// encodeImage reads the image and produces a transport-safe base64 encoding.
// Failure here is a bad-input error, never transient, so callers must not
// retry it.
func encodeImage(imagePath string) (encodedImage, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return encodedImage{}, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > constants.MaxImageBytes {
		return encodedImage{}, fmt.Errorf("image too large: %d bytes (max %d)", info.Size(), constants.MaxImageBytes)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return encodedImage{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return encodedImage{}, fmt.Errorf("empty image file: %s", imagePath)
	}

	mime := http.DetectContentType(data)
	return encodedImage{
		Base64: base64.StdEncoding.EncodeToString(data),
		MIME:   mime,
		Data:   data,
		Bytes:  len(data),
	}, nil
}

// dataURL renders the encoding as an inline data URL for OpenAI-style image
// parts.
func (e encodedImage) dataURL() string {
	return "data:" + e.MIME + ";base64," + e.Base64
}
