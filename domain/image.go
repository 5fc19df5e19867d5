package domain

import "mime/multipart"

const (
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an image file attached to a new post. It only exists in
// transit: the storage collaborator persists the file and hands back an
// opaque URL, which is the only thing the feed subsystem ever stores.
type Image struct {
	File        multipart.File `json:"-"`
	Filename    string         `json:"-"`
	Extension   string         `json:"-"`
	ContentType string         `json:"-"`
}

// ImageStorage is the media collaborator contract: given a binary payload it
// returns an opaque, stable URL string to be stored verbatim on the post.
type ImageStorage interface {
	Upload(img *Image) (url string, err error)
}
