package archive

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("%PDF-1.7 fake document body")

	token := Encode("application/pdf", payload)
	decoded, err := Decode(token)
	assert.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeBareBase64(t *testing.T) {
	payload := []byte("epub bytes")
	token := base64.StdEncoding.EncodeToString(payload)

	decoded, err := Decode(token)
	assert.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeSplitsOnFirstCommaOnly(t *testing.T) {
	// base64 never contains a comma, so everything after the first comma
	// is the payload even when the header is unusual.
	payload := []byte{0x01, 0x02, 0x03}
	token := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(payload)

	decoded, err := Decode(token)
	assert.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("data:application/pdf;base64,!!!not-base64!!!")
	assert.Error(t, err)
}

func TestMimeType(t *testing.T) {
	token := Encode("application/epub+zip", []byte("x"))
	assert.Equal(t, "application/epub+zip", MimeType(token, "application/pdf"))

	// bare base64 has no header, the fallback wins
	bare := base64.StdEncoding.EncodeToString([]byte("x"))
	assert.Equal(t, "application/pdf", MimeType(bare, "application/pdf"))
}
