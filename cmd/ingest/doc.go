// Command ingest adds local video files to the library without going
// through the HTTP server.
//
// Each file runs through the same pipeline as an upload: it is hashed,
// committed under its content-derived name, probed for duration, and given
// an animated preview. Files whose content is already in the library are
// reported as duplicates and leave nothing behind.
//
// Usage:
//
//	ingest -artist NAME -genre NAME [-title T] [-description D] [-json] [-v] FILE|DIR...
//
// Directories are searched recursively for supported videos, skipping hidden
// files and directories.
//
// Output:
//
// On a terminal the results are printed as a table. Otherwise, or with
// -json, one JSON object per file is written to stdout.
//
// Exit status is 1 if any file failed or the run was interrupted, 2 for
// usage errors.
//
// Environment:
//
// The command reads the same variables as the server (UPLOAD_DIR,
// THUMBNAIL_DIR, STAGING_DIR, WORK_DIR, DATABASE_DIR, FFMPEG_PATH, ...), so
// it must point at the server's directories to share its library. It is safe
// to run while the server is up.
package main
