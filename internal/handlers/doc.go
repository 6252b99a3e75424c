// Package handlers provides the HTTP API of the thumbnail server.
//
// Routes (registered in main):
//
//	GET  /api/thumbnail/{path}  frame at ?position=, BMP or ?format=png|jpeg
//	GET  /api/probe/{path}      codec, duration and size as JSON
//	GET  /health, /healthz      service status
//	GET  /livez, /readyz        Kubernetes probes
//	GET  /version               build information
//
// Paths are relative to MEDIA_DIR. Extractions pass through an [Admission]
// gate sized by THUMBNAIL_WORKERS and are refused with 503 while the
// memory monitor is shedding load.
//
// Error responses are JSON bodies with an "error" message and a "kind"
// naming the failure. Files that cannot be opened or decoded answer 422,
// a position past the last decodable frame answers 404 and malformed
// parameters answer 400.
package handlers
