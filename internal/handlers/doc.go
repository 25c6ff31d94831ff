// Package handlers provides the HTTP handlers of the video library.
//
// It includes handlers for:
//   - Multipart video upload into the ingestion pipeline
//   - Asset record lookup
//   - Serving stored videos and preview animations
//   - Health, liveness and version information
package handlers
