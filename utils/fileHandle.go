package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// UploadURLPrefix is the public path the upload directory is served under.
const UploadURLPrefix = "/uploads/"

// ImageTypes are the upload types accepted for logos and signatures.
var ImageTypes = []string{"image/png", "image/jpeg"}

// ErrUnsupportedType is returned when an upload's detected type is not allowed.
type ErrUnsupportedType struct {
	Detected string
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported file type %s", e.Detected)
}

// SaveUploadedFile stores file under uploadDir/subdir and returns its path
// relative to uploadDir. The content type is sniffed, not taken from the
// client, and must be one of allowed.
func SaveUploadedFile(file *multipart.FileHeader, uploadDir, subdir, prefix string, allowed []string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		return "", &ErrUnsupportedType{Detected: mtype.String()}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	destDir := filepath.Join(uploadDir, subdir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := prefix + "-" + time.Now().UTC().Format("20060102150405") + mtype.Extension()
	filePath := filepath.Join(destDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", err
	}

	return filepath.ToSlash(filepath.Join(subdir, newFilename)), nil
}

// GetFileURL maps a path relative to the upload dir to its public URL.
func GetFileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	return UploadURLPrefix + strings.TrimPrefix(filepath.ToSlash(filePath), "/")
}

// ResolveUploadPath maps a stored asset reference to a file on disk. Public
// /uploads/ URLs resolve inside uploadDir. Relative paths are looked up in
// uploadDir first, then taken as given.
func ResolveUploadPath(uploadDir, ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, UploadURLPrefix):
		return filepath.Join(uploadDir, filepath.FromSlash(strings.TrimPrefix(ref, UploadURLPrefix)))
	case filepath.IsAbs(ref):
		return ref
	}
	inUploads := filepath.Join(uploadDir, filepath.FromSlash(ref))
	if _, err := os.Stat(inUploads); err == nil {
		return inUploads
	}
	return ref
}
