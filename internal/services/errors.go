package services

import "fmt"

// ValidationError is a user-correctable pre-flight rejection, shown inline.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// UploadError is a storage-backend failure while writing an object. The
// caller must not persist any reference to the attempted path.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// SignError is a failure to mint a signed URL for an existing object.
type SignError struct {
	Path string
	Err  error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("sign %s: %v", e.Path, e.Err)
}

func (e *SignError) Unwrap() error {
	return e.Err
}

// PersistError is a database write failure after a successful upload: the
// object exists in storage but the record does not. Surfaced distinctly
// from UploadError so the user knows which half failed.
type PersistError struct {
	CoverPath string
	Err       error
}

func (e *PersistError) Error() string {
	if e.CoverPath != "" {
		return fmt.Sprintf("item not saved (uploaded cover kept at %s): %v", e.CoverPath, e.Err)
	}
	return fmt.Sprintf("item not saved: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
