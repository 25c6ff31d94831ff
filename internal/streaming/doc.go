/*
Package streaming protects stored-file downloads from slow or vanished
clients.

The HTTP server runs with no global WriteTimeout, since a large video may
legitimately take minutes to download. Instead, [Writer] wraps the response
and gives every chunk its own write deadline through
http.ResponseController. A client that stops reading fails the next write
with [ErrWriteTimeout] instead of holding the handler, its goroutine and the
open file indefinitely.

# Usage

	sw := streaming.NewWriter(r.Context(), w, streaming.DefaultConfig())
	defer sw.Close()
	http.ServeContent(sw, r, name, modTime, f)
	if err := sw.Err(); err != nil {
		// the client got a truncated body
	}

Writers that cannot carry deadlines, such as httptest.ResponseRecorder,
are written through unchanged.

# Metrics

Timeouts are counted in video_library_stream_write_timeouts_total.
*/
package streaming
