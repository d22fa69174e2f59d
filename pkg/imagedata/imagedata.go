package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrEmpty is returned when a reader yields no bytes.
var ErrEmpty = errors.New("imagedata: empty image")

// Image is a logo payload ready to be embedded in a generation request.
type Image struct {
	Data []byte
	MIME string
}

// FromReader drains r and returns the content paired with its sniffed MIME
// type. declaredMIME wins when provided; sniffing is the fallback for
// browsers that omit the part content type.
func FromReader(r io.Reader, declaredMIME string) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("imagedata: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	mime := strings.TrimSpace(declaredMIME)
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return &Image{Data: data, MIME: mime}, nil
}

// Base64 returns the standard base64 encoding of the image bytes, with no
// data-URI header.
func (i *Image) Base64() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(i.Data)
}

// StripDataURI removes a `data:<mime>;base64,` prefix from an encoded string.
// Payloads that never carried the prefix pass through unchanged.
func StripDataURI(encoded string) string {
	if !strings.HasPrefix(encoded, "data:") {
		return encoded
	}
	if idx := strings.Index(encoded, ","); idx >= 0 {
		return encoded[idx+1:]
	}
	return encoded
}
