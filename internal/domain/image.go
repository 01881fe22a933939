package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotAnImage is returned when an upload does not carry an image media type.
var ErrNotAnImage = errors.New("please upload an image file (JPG, PNG)")

// UploadedImage is a user-selected image. It is captured once per pipeline
// run and never mutated.
type UploadedImage struct {
	Name      string
	MediaType string
	Data      []byte
}

func (i UploadedImage) Size() int {
	return len(i.Data)
}

// ValidateImage checks the media type prefix. It is applied at the upload
// boundary, before the image reaches the pipeline.
func ValidateImage(img UploadedImage) error {
	mt := strings.ToLower(strings.TrimSpace(img.MediaType))
	if !strings.HasPrefix(mt, "image/") {
		return fmt.Errorf("%w: %s has type %q", ErrNotAnImage, img.Name, img.MediaType)
	}
	return nil
}
