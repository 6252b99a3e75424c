package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"video-thumbnailer/internal/filesystem"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/mediatypes"
	"video-thumbnailer/internal/metrics"
	"video-thumbnailer/internal/preview"
	"video-thumbnailer/internal/streaming"
	"video-thumbnailer/internal/thumb"

	"github.com/gorilla/mux"
)

// maxDimension bounds requested output sizes.
const maxDimension = 4096

// ProbeResponse describes a video without extracting a frame.
type ProbeResponse struct {
	Path     string    `json:"path"`
	MimeType string    `json:"mimeType"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Codec    string    `json:"codec"`
	Duration float64   `json:"duration"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
}

// requestError is a client-facing failure with its HTTP status.
type requestError struct {
	status  int
	message string
	kind    string
}

func (e *requestError) Error() string { return e.message }

// GetThumbnail extracts one frame of the video at {path} and returns it as
// BMP, or re-encoded when format, width or height are given.
//
// Query parameters:
//   - position: fraction of the duration in [0, 1] (default from config)
//   - format: bmp, png or jpeg
//   - width, height: bounding box; one alone keeps the aspect ratio
//   - quality: JPEG quality 1-100
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	relPath := mux.Vars(r)["path"]

	position, opts, err := h.parseThumbnailQuery(r)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}

	fullPath, info, err := h.resolveVideo(relPath)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}

	release, err := h.admit(r)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}
	defer release()

	session, err := h.thumber.Create(fullPath)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}
	defer h.thumber.Destroy(session)

	size, buf, err := h.thumber.LoadFrame(session, position)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}
	defer h.thumber.FreeFrameBuffer(buf)

	body, err := preview.Render(buf.Bytes(), opts)
	if err != nil {
		logging.Error("Thumbnail: rendering %s as %s failed: %v", relPath, opts.Format, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to render thumbnail", "render")
		return
	}

	logging.Debug("Thumbnail: %s at %.3f -> %d byte bitmap, %d byte %s", relPath, position, size, len(body), opts.Format)

	setVideoHeaders(w, h.thumber, session)
	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "thumbnail"+opts.Format.Extension()))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if err := streaming.WriteBody(r.Context(), w, body, h.bodyConfig); err != nil {
		if errors.Is(err, streaming.ErrClientGone) {
			logging.Debug("Thumbnail: client went away while writing %s", relPath)
		} else {
			logging.Warn("Thumbnail: writing %s failed: %v", relPath, err)
		}
	}
}

// ProbeVideo opens the video at {path} and reports its metadata.
func (h *Handlers) ProbeVideo(w http.ResponseWriter, r *http.Request) {
	relPath := mux.Vars(r)["path"]

	fullPath, info, err := h.resolveVideo(relPath)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}

	release, err := h.admit(r)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}
	defer release()

	session, err := h.thumber.Create(fullPath)
	if err != nil {
		h.writeRequestError(w, relPath, err)
		return
	}
	defer h.thumber.Destroy(session)

	setVideoHeaders(w, h.thumber, session)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, ProbeResponse{
		Path:     relPath,
		MimeType: mediatypes.GetMimeType(relPath),
		Size:     info.Size(),
		ModTime:  info.ModTime().UTC(),
		Codec:    h.thumber.CodecName(session),
		Duration: h.thumber.Duration(session),
		Width:    h.thumber.Width(session),
		Height:   h.thumber.Height(session),
	})
}

func setVideoHeaders(w http.ResponseWriter, t thumb.Thumber, s *thumb.Session) {
	w.Header().Set("X-Video-Codec", t.CodecName(s))
	w.Header().Set("X-Video-Duration", strconv.FormatFloat(t.Duration(s), 'f', 3, 64))
	w.Header().Set("X-Video-Width", strconv.Itoa(t.Width(s)))
	w.Header().Set("X-Video-Height", strconv.Itoa(t.Height(s)))
}

func (h *Handlers) parseThumbnailQuery(r *http.Request) (float64, preview.Options, error) {
	q := r.URL.Query()
	opts := preview.Options{}

	position := h.defaultPosition
	if s := q.Get("position"); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, opts, &requestError{http.StatusBadRequest, "position must be a number in [0, 1]", thumb.KindInvalidPosition.String()}
		}
		// LoadFrame enforces the range.
		position = p
	}

	format, err := preview.ParseFormat(q.Get("format"))
	if err != nil {
		return 0, opts, &requestError{http.StatusBadRequest, err.Error(), "invalid_format"}
	}
	opts.Format = format

	if opts.Width, err = dimension(q.Get("width")); err != nil {
		return 0, opts, &requestError{http.StatusBadRequest, "width: " + err.Error(), "invalid_size"}
	}
	if opts.Height, err = dimension(q.Get("height")); err != nil {
		return 0, opts, &requestError{http.StatusBadRequest, "height: " + err.Error(), "invalid_size"}
	}

	if s := q.Get("quality"); s != "" {
		quality, err := strconv.Atoi(s)
		if err != nil || quality < 1 || quality > 100 {
			return 0, opts, &requestError{http.StatusBadRequest, "quality must be between 1 and 100", "invalid_quality"}
		}
		opts.Quality = quality
	}

	return position, opts, nil
}

func dimension(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxDimension {
		return 0, fmt.Errorf("must be an integer between 1 and %d", maxDimension)
	}
	return n, nil
}

// resolveVideo maps a request path onto a video file under the media
// directory.
func (h *Handlers) resolveVideo(relPath string) (string, os.FileInfo, error) {
	if relPath == "" {
		return "", nil, &requestError{http.StatusBadRequest, "path is required", "invalid_path"}
	}
	if !mediatypes.IsVideo(relPath) {
		return "", nil, &requestError{http.StatusUnsupportedMediaType, "unsupported file type", "unsupported_type"}
	}

	fullPath, info, err := filesystem.ResolveFile(h.mediaDir, relPath, h.retry)
	switch {
	case err == nil:
		return fullPath, info, nil
	case errors.Is(err, filesystem.ErrOutsideRoot), errors.Is(err, os.ErrInvalid):
		return "", nil, &requestError{http.StatusBadRequest, "invalid path", "invalid_path"}
	case errors.Is(err, filesystem.ErrNotRegular):
		return "", nil, &requestError{http.StatusBadRequest, "not a regular file", "invalid_path"}
	case errors.Is(err, os.ErrNotExist):
		return "", nil, &requestError{http.StatusNotFound, "file not found", "file_not_found"}
	default:
		return "", nil, fmt.Errorf("resolving %s: %w", relPath, err)
	}
}

// admit applies memory load shedding and then waits for an extraction slot.
func (h *Handlers) admit(r *http.Request) (func(), error) {
	if h.shedder.Overloaded() {
		metrics.AdmissionRejectedTotal.WithLabelValues("memory").Inc()
		return nil, &requestError{http.StatusServiceUnavailable, "server is low on memory, retry later", "overloaded"}
	}

	release, err := h.admission.Acquire(r.Context())
	if err != nil {
		metrics.AdmissionRejectedTotal.WithLabelValues("canceled").Inc()
		return nil, &requestError{http.StatusServiceUnavailable, "request canceled while waiting for a worker", "canceled"}
	}
	return release, nil
}

// statusForKind maps extraction failures onto HTTP statuses. Inputs that
// cannot be opened or decoded are the client's file, not a server fault.
func statusForKind(k thumb.Kind) int {
	switch k {
	case thumb.KindContainerOpen, thumb.KindProbe, thumb.KindNoVideoStream, thumb.KindDecoderOpen:
		return http.StatusUnprocessableEntity
	case thumb.KindNotFound:
		return http.StatusNotFound
	case thumb.KindInvalidPosition:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeRequestError(w http.ResponseWriter, relPath string, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		logging.Debug("Request for %s rejected (%d): %s", relPath, reqErr.status, reqErr.message)
		if reqErr.status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "5")
		}
		writeJSONError(w, reqErr.status, reqErr.message, reqErr.kind)
		return
	}

	kind := thumb.KindOf(err)
	if kind == thumb.KindUnknown {
		logging.Error("Request for %s failed: %v", relPath, err)
		writeJSONError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logging.Error("Extraction for %s failed: %v", relPath, err)
	} else {
		logging.Warn("Extraction for %s failed: %v", relPath, err)
	}
	writeJSONError(w, status, kind.Message(), kind.String())
}
