// Package archive encodes binary payloads as text-safe data URIs so a whole
// snapshot stays valid as one JSON document.
package archive

import (
	"encoding/base64"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// Encode renders data as "data:<mime>;base64,<payload>".
func Encode(mimeType string, data []byte) string {
	return dataurl.New(data, mimeType).String()
}

// Decode resolves a payload token into raw bytes. The contract: split once
// on the first comma; if two parts exist the second is the payload, else
// the whole string is the payload. This accepts both full data URIs and the
// bare base64 form older exports carry.
func Decode(token string) ([]byte, error) {
	payload := token
	if _, rest, found := strings.Cut(token, ","); found {
		payload = rest
	}
	return base64.StdEncoding.DecodeString(payload)
}

// MimeType extracts the media type from a data URI, or returns fallback for
// a bare payload.
func MimeType(token, fallback string) string {
	if !strings.HasPrefix(token, "data:") {
		return fallback
	}
	u, err := dataurl.DecodeString(token)
	if err != nil {
		return fallback
	}
	return u.ContentType()
}
