package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCachePayloadRoundTrip(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	body := []byte(`{"success":true}`)

	encoded, err := encodePayload(http.StatusOK, header, body)
	assert.NoError(t, err)

	status, gotHeader, gotBody, ok := decodePayload(encoded)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayload_RejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload(nil)
	assert.False(t, ok)

	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)

	// header length pointing past the end of the buffer
	bad := make([]byte, 8)
	bad[7] = 0xFF
	_, _, _, ok = decodePayload(bad)
	assert.False(t, ok)
}
