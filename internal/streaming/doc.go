/*
Package streaming writes HTTP response bodies with per-chunk write deadlines.

# Overview

The thumbnail server cannot use http.Server.WriteTimeout: the deadline it
sets covers the whole request, and extraction time varies with the input.
Instead the body is written through a [Writer], which splits it into chunks
and sets a fresh write deadline on the connection before each one via
http.ResponseController.

# Usage

	body, err := preview.Render(frame, opts)
	...
	if err := streaming.WriteBody(r.Context(), w, body, streaming.DefaultConfig()); err != nil {
		if errors.Is(err, streaming.ErrClientGone) {
			return
		}
		logging.Warn("writing thumbnail: %v", err)
	}

Response writers that cannot set deadlines (httptest.ResponseRecorder, or
middleware wrappers without an Unwrap method) are written to without them.

# Error Handling

  - [ErrWriteTimeout]: a chunk missed its deadline; the client is too slow
  - [ErrClientGone]: the request context ended before the body was written

Both can be checked with errors.Is.
*/
package streaming
