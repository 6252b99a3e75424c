// Package logging provides a simple leveled logging interface for the
// video thumbnailer.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level is read once from DEBUG or LOG_LEVEL. SetLevel overrides it,
// which the CLI does for its --verbosity flag and the ffmpeg backend does
// implicitly by forwarding library messages at the matching level.
package logging
