package util

import (
	"encoding/base64"
	"errors"
	"regexp"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

var ErrNotImageDataURL = errors.New("not a base64 image data url")

// DecodeDataURL decodes a "data:image/<type>;base64,..." string into raw bytes.
func DecodeDataURL(val string) ([]byte, error) {
	loc := dataURLPrefix.FindStringIndex(val)
	if loc == nil {
		return nil, ErrNotImageDataURL
	}
	return base64.StdEncoding.DecodeString(val[loc[1]:])
}
