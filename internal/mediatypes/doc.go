// Package mediatypes classifies source files by extension.
//
// It has no dependencies beyond the standard library so that the HTTP
// handlers and the command-line tool can share one list of accepted
// containers:
//
//	if !mediatypes.IsVideo(path) {
//	    // reject before opening the file
//	}
//	w.Header().Set("X-Source-Type", mediatypes.GetMimeType(path))
package mediatypes
