package helpers

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// AvatarSize is the square dimension every stored avatar is normalized to.
const AvatarSize = 250

// GravatarURL returns the deterministic identicon URL for an email address.
// The hash is computed from the trimmed, lowercased address per the gravatar
// convention; stored emails themselves keep their original case.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=retro", sum, AvatarSize)
}

// NormalizeAvatar decodes an uploaded image, crops/resizes it to a
// AvatarSize square and re-encodes it. The returned content type matches
// the encoding used.
func NormalizeAvatar(r io.Reader, filename string) ([]byte, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	img = imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	format := imaging.JPEG
	contentType := "image/jpeg"
	if strings.EqualFold(filepath.Ext(filename), ".png") {
		format = imaging.PNG
		contentType = "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), contentType, nil
}

// AvatarObjectName builds the stored object name from the owning user id and
// the original upload filename, so re-uploads of the same file overwrite.
func AvatarObjectName(userID, originalFilename string) string {
	return "avatars/" + userID + "_" + filepath.Base(originalFilename)
}
