package nc4

import (
	"errors"
	"fmt"
)

var (
	// ErrBackend is matched by every error the object store reported.
	ErrBackend = errors.New("backend error")

	// ErrNoMem is returned when an allocation size is out of range
	ErrNoMem = errors.New("out of memory")

	// ErrBadTypeID is returned when a storage type has no netCDF equivalent
	ErrBadTypeID = errors.New("bad type id")

	// ErrAttMeta is returned for malformed attribute metadata
	ErrAttMeta = errors.New("bad attribute metadata")

	// ErrVarMeta is returned for malformed variable metadata
	ErrVarMeta = errors.New("bad variable metadata")

	ErrBadName   = errors.New("bad name")
	ErrInvalid   = errors.New("invalid argument")
	ErrBadClass  = errors.New("bad type class")
	ErrBadID     = errors.New("id not found")
	ErrBadDim    = errors.New("bad dimension id")
	ErrNameInUse = errors.New("name in use")
	ErrMaxDims   = errors.New("too many dimensions")
	ErrBadSize   = errors.New("bad size")
	ErrNotFound  = errors.New("not found")

	// ErrInDefine is returned when entering define mode twice, or when a
	// classic model file is synced without leaving define mode first.
	ErrInDefine = errors.New("operation not allowed in define mode")

	// ErrNotInDefine is returned for define-mode operations in data mode.
	ErrNotInDefine = errors.New("operation not allowed in data mode")

	// ErrPerm is returned for writes to a read-only file
	ErrPerm = errors.New("write to read-only file")

	// ErrCantWrite is returned when a file without creation order
	// tracking is opened for writing.
	ErrCantWrite = errors.New("can't write file without creation order tracking")

	// ErrExist is returned when a no-clobber create finds an existing file
	ErrExist = errors.New("file exists")

	// ErrCantRemove is returned when Abort can't delete a new file.
	ErrCantRemove = errors.New("can't remove file")

	// ErrLateDef is returned when a definition is changed after it was
	// written to the container.
	ErrLateDef = errors.New("definition can't change once written")

	// ErrInternal is an internal error not otherwise specified here
	ErrInternal = errors.New("internal error")
)

// BackendError wraps a failure reported by the object store.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error in %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
