package util

import "bytes"

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// SniffImageMIME recognizes the image formats the plotter can emit.
func SniffImageMIME(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if bytes.HasPrefix(b, pngSignature) {
		return "image/png"
	}
	return "application/octet-stream"
}
