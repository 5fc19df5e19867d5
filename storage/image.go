package storage

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// ImageService persists uploaded images and returns the opaque URL that gets
// stored on the post. Where the bytes actually end up is a Backend concern;
// callers only ever see the URL.
// It implements the domain.ImageStorage interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to the configured backend.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	backend Backend
}

// A Backend stores a validated image file and returns its opaque URL.
type Backend interface {
	store(img *domain.Image) (string, error)
}

// NewImageService returns an instance of ImageService writing to the given backend.
func NewImageService(backend Backend) *ImageService {
	return &ImageService{
		imageValidator{
			backend: backend,
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageStorage interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageStorage = &ImageService{}

// Upload runs validations needed for storing uploaded images.
func (iv *imageValidator) Upload(img *domain.Image) (string, error) {
	err := runImageValFns(img,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
	)
	if err != nil {
		return "", err
	}
	return iv.backend.store(img)
}

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// A imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// extensionValid makes sure that the image to be uploaded has a jpeg or png file extension.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" invalid extension, must be .png, .jpg or .jpeg.",
		)
	}
	img.Extension = ext
	return nil
}

// contentTypeValid makes sure that the image to be uploaded is a valid jpeg or png file.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	_, err := img.File.Read(buffer)
	if err != nil && err != io.EOF {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" invalid content-type, must be image/jpeg or image/png.",
		)
	}
	img.ContentType = contentType
	return nil
}

// contentTypeExtensionMatch makes sure that the sniffed content-type matches the file extension.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	contentType := strings.TrimPrefix(img.ContentType, "image/")
	ext := strings.TrimPrefix(img.Extension, ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	if contentType != ext {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" content-type "+img.ContentType+" does not match extension "+img.Extension+".",
		)
	}
	return nil
}

// belowMaxSize makes sure that the image to be uploaded does not exceed MaxUploadSize.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" exceeds upload size limit of "+strconv.FormatInt(domain.MaxUploadSize/1000000, 10)+"MB.",
		)
	}
	return nil
}

// resetFilePointer rewinds the image file after a validation has read from it.
func resetFilePointer(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}
