package models

// ObjectInfo carries the object-store metadata needed to build streaming
// response headers.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}
