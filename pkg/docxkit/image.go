package docxkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

// parseDataURI parses a data URI and returns the MIME type and decoded data
func parseDataURI(dataURI string) (string, []byte, error) {
	if dataURI == "" {
		return "", nil, fmt.Errorf("empty data URI")
	}
	// data:[<mediatype>][;base64],<data>
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	metadata, dataStr, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	if dataStr == "" {
		return "", nil, fmt.Errorf("no image data")
	}
	mimeType, ok := strings.CutSuffix(metadata, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("missing base64 marker")
	}
	if getImageExtension(mimeType) == "" {
		return "", nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}

	data, err := decodeBase64(dataStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return mimeType, data, nil
}

// decodeBase64 decodes standard base64, ignoring surrounding whitespace and
// embedded line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(s)
}

// getImageExtension returns the file extension (without dot) for a MIME type,
// or "" when the type is not an embeddable image.
func getImageExtension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	default:
		return ""
	}
}

// extensionContentTypes maps media extensions to their content types.
var extensionContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// sniffImage detects the MIME type of raw image bytes.
func sniffImage(data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	if getImageExtension(mimeType) == "" {
		return "", fmt.Errorf("unsupported image data (%s)", mimeType)
	}
	return mimeType, nil
}

// imageSize returns the pixel dimensions of PNG, JPEG or GIF data.
func imageSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
