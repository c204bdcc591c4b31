package imagestore

import (
	"fmt"
	"io"
	"mime/multipart"
)

// Submission is the state of an optional image form field. It is either
// NoFile or a File; whether a File's content type is acceptable is decided
// by the caller.
type Submission struct {
	present bool
	file    File
}

// File is an uploaded image as received from the client.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NoFile is the submission of a form without an image.
func NoFile() Submission {
	return Submission{}
}

// FileSubmission wraps an uploaded file.
func FileSubmission(filename, contentType string, content []byte) Submission {
	return Submission{
		present: true,
		file:    File{Filename: filename, ContentType: contentType, Content: content},
	}
}

// File returns the submitted file and true, or false when no file was sent.
func (s Submission) File() (File, bool) {
	return s.file, s.present
}

// Present reports whether a file was sent.
func (s Submission) Present() bool {
	return s.present
}

// FromMultipart reads a multipart file header into a Submission. A nil or
// empty part is NoFile. The content type is taken from the part header.
func FromMultipart(fh *multipart.FileHeader, maxBytes int64) (Submission, error) {
	if fh == nil || fh.Size == 0 {
		return NoFile(), nil
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return NoFile(), fmt.Errorf("%w: file exceeds %d bytes", ErrTooLarge, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return NoFile(), fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return NoFile(), fmt.Errorf("read upload: %w", err)
	}
	if len(content) == 0 {
		return NoFile(), nil
	}
	return FileSubmission(fh.Filename, fh.Header.Get("Content-Type"), content), nil
}
