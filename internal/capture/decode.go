// Package capture loads fingerprint images and prepares them for ridge analysis using GoCV (OpenCV).
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyImage is returned when image data decodes to an empty Mat.
	ErrEmptyImage = errors.New("image is empty")
	// ErrInvalidDataURL is returned when an encoded image cannot be parsed.
	ErrInvalidDataURL = errors.New("invalid image data")
	// ErrUnsupportedImage is returned for data URLs with a media type OpenCV cannot decode.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// supportedMediaTypes lists the data URL media types accepted by DecodeDataURL.
var supportedMediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/bmp",
	"image/tiff",
	"image/x-portable-graymap",
	"image/x-portable-bitmap",
}

// Decode decodes encoded image bytes (JPEG, PNG, BMP, PNM, ...) into a BGR Mat.
// The caller is responsible for closing the returned Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return mat, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		return mat, ErrEmptyImage
	}

	return mat, nil
}

// Load reads an image file from disk into a BGR Mat.
// The caller is responsible for closing the returned Mat.
func Load(path string) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return mat, fmt.Errorf("load %s: %w", path, ErrEmptyImage)
	}
	return mat, nil
}

// DecodeDataURL returns the raw bytes of a base64 image, either bare or wrapped in a
// "data:image/...;base64," URL.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidDataURL
	}

	if strings.HasPrefix(s, "data:") {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURL)
		}
		params := strings.Split(strings.TrimPrefix(parts[0], "data:"), ";")
		s = parts[1]

		if len(params) < 2 || !strings.EqualFold(params[len(params)-1], "base64") {
			return nil, fmt.Errorf("%w: payload is not base64", ErrInvalidDataURL)
		}
		mediaType := strings.ToLower(strings.TrimSpace(params[0]))
		if !isSupported(mediaType) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mediaType)
		}
	}

	// Clients wrap long payloads and some drop the padding.
	s = strings.TrimRight(strings.Join(strings.Fields(s), ""), "=")
	decoded, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(decoded) == 0 {
		return nil, ErrInvalidDataURL
	}

	return decoded, nil
}

func isSupported(mediaType string) bool {
	for _, t := range supportedMediaTypes {
		if t == mediaType {
			return true
		}
	}
	return false
}
