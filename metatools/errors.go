package metatools

import "fmt"

// ParseError reports a malformed timestamp or acquisition directory name.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
}

// RasterOpenError reports a raster that is missing, truncated or has no readable header.
type RasterOpenError struct {
	Path string
	Err  error
}

func (e *RasterOpenError) Error() string {
	return fmt.Sprintf("open raster %s: %v", e.Path, e.Err)
}

func (e *RasterOpenError) Unwrap() error { return e.Err }

// CRSError reports a raster that declares no coordinate reference system, or one
// that cannot be reprojected to EPSG:4326.
type CRSError struct {
	Path string
	Err  error
}

func (e *CRSError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("raster %s: no coordinate reference system", e.Path)
	}
	return fmt.Sprintf("raster %s: reproject bounds: %v", e.Path, e.Err)
}

func (e *CRSError) Unwrap() error { return e.Err }

// DirectoryNotFoundError is fatal: the dataset root or one of its images/masks
// subdirectories is absent or unreadable.
type DirectoryNotFoundError struct {
	Path string
	Err  error
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryNotFoundError) Unwrap() error { return e.Err }

// WriteError is fatal: the manifest could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
