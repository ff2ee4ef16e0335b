package utils

// images.go implements upload validation and storage for service and profile
// pictures.  Files are checked for size and for being a decodable image
// before anything touches disk; saved files are namespaced by owner id plus
// a random unique suffix so concurrent uploads can never collide.

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSizeBytes caps a single uploaded image at 5 MB.
const MaxImageSizeBytes = 5 << 20

// ValidateImages splits an upload batch into files that may be stored and a
// list of human readable rejection messages.  A file is rejected when it
// exceeds the size cap or cannot be decoded as an image.
func ValidateImages(files []*multipart.FileHeader) (valid []*multipart.FileHeader, errs []string) {
	for _, fh := range files {
		if fh.Size > MaxImageSizeBytes {
			errs = append(errs, fmt.Sprintf("file %s exceeds 5MB limit", fh.Filename))
			continue
		}
		f, err := fh.Open()
		if err != nil {
			errs = append(errs, fmt.Sprintf("file %s could not be read", fh.Filename))
			continue
		}
		_, _, err = image.Decode(f)
		f.Close()
		if err != nil {
			errs = append(errs, fmt.Sprintf("file %s is not a valid image", fh.Filename))
			continue
		}
		valid = append(valid, fh)
	}
	return valid, errs
}

// SaveImages writes the given files into dir, naming each one
// "<ownerID>_<uuid>_<sanitized original name>".  It returns the stored file
// names.  The directory is created on demand.  A failure mid-batch stops the
// loop and reports the error; already written files are left in place for
// the caller to reconcile.
func SaveImages(ownerID uint64, files []*multipart.FileHeader, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	names := make([]string, 0, len(files))
	for _, fh := range files {
		sanitized := strings.ReplaceAll(filepath.Base(fh.Filename), " ", "_")
		name := fmt.Sprintf("%d_%s_%s", ownerID, uuid.NewString(), sanitized)

		src, err := fh.Open()
		if err != nil {
			return names, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			src.Close()
			return names, fmt.Errorf("create %s: %w", name, err)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return names, fmt.Errorf("write %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// RemoveImageFile deletes a stored image by its public URL path.  Missing
// files are not an error; the database row is the source of truth.
func RemoveImageFile(dir, urlPath string) {
	p := filepath.Join(dir, filepath.Base(urlPath))
	if _, err := os.Stat(p); err == nil {
		_ = os.Remove(p)
	}
}
