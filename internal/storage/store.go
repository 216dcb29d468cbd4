package storage

import "context"

// StoredObject describes a persisted blob: the store-internal URI used as the
// durable reference and the URL a browser can fetch it from.
type StoredObject struct {
	StoreURI  string
	PublicURL string
}

// ObjectInfo describes one listed blob.
type ObjectInfo struct {
	Key       string
	Name      string
	Size      int64
	StoreURI  string
	PublicURL string
}

// BlobStore is the object-store contract used by the generation pipeline and
// the asset endpoints. Writes always use unique keys, so implementations do
// not need to handle overwrites.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
