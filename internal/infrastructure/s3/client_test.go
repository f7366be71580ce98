package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageContentType(t *testing.T) {
	cases := []struct {
		name, wantType, wantExt string
		ok                      bool
	}{
		{"selfie.JPG", "image/jpeg", ".jpg", true},
		{"selfie.jpeg", "image/jpeg", ".jpg", true},
		{"beach.png", "image/png", ".png", true},
		{"IMG_0001.HEIC", "image/heic", ".heic", true},
		{"notes.pdf", "", "", false},
		{"noext", "", "", false},
	}
	for _, tc := range cases {
		ct, ext, ok := ImageContentType(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.wantType, ct, tc.name)
		assert.Equal(t, tc.wantExt, ext, tc.name)
	}
}
