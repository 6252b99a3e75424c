// Package middleware provides HTTP middleware for the thumbnail server.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with the source codec
//   - Prometheus request metrics labelled by route template
//   - gzip compression of BMP and JSON responses
package middleware
