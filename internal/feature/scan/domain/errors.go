// Package domain defines domain-level errors for the scan feature.
package domain

import "errors"

// Domain errors for document scanning operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrImageDecode indicates that the uploaded bytes could not be decoded
	// as a raster image. Fatal for the affected document, not for a batch.
	ErrImageDecode = errors.New("image cannot be decoded")

	// ErrUnsupportedFormat indicates a file extension outside the accepted set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoRasterContent indicates a PDF that carries no embedded page image
	// and therefore cannot be analyzed visually.
	ErrNoRasterContent = errors.New("document contains no raster content")
)
