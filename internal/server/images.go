package server

import (
	"encoding/base64"
	"errors"
	"strings"
)

// decodeImageData accepts a data URL or bare base64. The declared media type
// is ignored; the workflow sniffs the decoded bytes.
func decodeImageData(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, errors.New("no image data")
	}
	if _, payload, ok := strings.Cut(data, ","); ok {
		data = payload
	}
	return base64.StdEncoding.DecodeString(data)
}
