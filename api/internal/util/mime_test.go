package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffImageMIME(t *testing.T) {
	assert.Equal(t, "image/png", SniffImageMIME([]byte("\x89PNG\r\n\x1a\n....")))
	assert.Equal(t, "image/jpeg", SniffImageMIME([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "application/octet-stream", SniffImageMIME([]byte("\x89PNG")))
	assert.Equal(t, "application/octet-stream", SniffImageMIME(nil))
}
