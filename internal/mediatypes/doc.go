// Package mediatypes holds the file-type tables shared by the upload handler,
// the storage layout and the file server.
//
// It has no dependencies beyond the standard library so any package can import
// it without creating cycles. Extensions are handled lowercase and without the
// leading dot, matching the "<hash>.<ext>" storage names.
package mediatypes
