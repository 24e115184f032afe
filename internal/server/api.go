// ABOUTME: REST handlers over the controller
// ABOUTME: Clips, recording, previews, track transport and waveform images
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/protocol"
	"github.com/harperreed/flipit/internal/remote"
	"github.com/harperreed/flipit/internal/version"
	"github.com/harperreed/flipit/pkg/render"
	"github.com/harperreed/flipit/pkg/transport"
)

// Waveform image bounds in logical pixels
const (
	defaultWaveformWidth  = 720
	defaultWaveformHeight = 120
	maxWaveformSide       = 4096
	maxPixelRatio         = 4

	// Device pixels per image; the RGBA buffer is four bytes each
	maxWaveformPixels = 4096 * 1024
)

type errorResponse struct {
	Error string `json:"error"`
}

type versionResponse struct {
	Product      string `json:"product"`
	Manufacturer string `json:"manufacturer"`
	Version      string `json:"version"`
	Protocol     int    `json:"protocol"`
}

type fetchRequest struct {
	URL string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps the application error taxonomy onto HTTP statuses
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, remote.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, app.ErrNoClip):
		return http.StatusNotFound
	case errors.Is(err, app.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, app.ErrDecodeFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, app.ErrRecording):
		return http.StatusConflict
	case errors.Is(err, app.ErrStorageUnavailable), errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, transport.ErrUnknownTrack),
		errors.Is(err, transport.ErrSelectionNotAllowed),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// writeState replies with the view model after an operation
func (s *Server) writeState(w http.ResponseWriter) {
	st, err := s.ctrl.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) reply(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w)
}

func kindParam(r *http.Request) (app.Kind, error) {
	kind, err := app.ParseKind(r.PathValue("kind"))
	if err != nil {
		return "", badRequest("%v", err)
	}
	return kind, nil
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Product:      version.Product,
		Manufacturer: version.Manufacturer,
		Version:      version.Version,
		Protocol:     protocol.ProtocolVersion,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

func (s *Server) handleClearStorage(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.ctrl.ClearStorage(r.Context()))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, remote.MaxClipBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		writeError(w, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if len(data) == 0 {
		writeError(w, badRequest("empty upload"))
		return
	}

	mime := remote.HeaderMime(r.Header.Get("Content-Type"))
	if mime == "application/octet-stream" {
		mime = ""
	}

	s.reply(w, s.ctrl.Upload(kind, data, mime))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filename, data, mime, err := s.ctrl.Download(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	writeFile(w, filename, mime, data)
}

func (s *Server) handleReversed(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filename, data, err := s.ctrl.ExportReversed(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, filename, "audio/wav", data)
}

func writeFile(w http.ResponseWriter, filename, mime string, data []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing %s: %v", filename, err)
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, badRequest("invalid fetch request: %v", err))
		return
	}
	if req.URL == "" {
		writeError(w, badRequest("url is required"))
		return
	}

	s.reply(w, s.ctrl.FetchClip(r.Context(), kind, req.URL))
}

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.reply(w, s.ctrl.StartRecording(kind))
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.ctrl.StopRecording())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sel, err := transport.ParseSelection(r.PathValue("sel"))
	if err != nil {
		writeError(w, badRequest("%v", err))
		return
	}
	s.reply(w, s.ctrl.Preview(sel))
}

func (s *Server) handleStopPlayback(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.ctrl.StopPlayback())
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id, err := transport.ParseTrackID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch action := r.PathValue("action"); action {
	case "play":
		err = s.ctrl.Play(id)
	case "pause":
		err = s.ctrl.Pause(id)
	case "toggle":
		err = s.ctrl.Toggle(id)
	case "stop":
		err = s.ctrl.StopTrack(id)
	case "seek":
		err = s.seek(r, id)
	case "source":
		err = s.source(r, id)
	default:
		err = badRequest("unknown track action %q", action)
	}
	s.reply(w, err)
}

// seek accepts an absolute ?t= or a relative ?by=
func (s *Server) seek(r *http.Request, id transport.TrackID) error {
	q := r.URL.Query()
	if by := q.Get("by"); by != "" {
		delta, err := strconv.ParseFloat(by, 64)
		if err != nil {
			return badRequest("invalid seek delta %q", by)
		}
		return s.ctrl.SeekBy(id, delta)
	}

	t, err := strconv.ParseFloat(q.Get("t"), 64)
	if err != nil {
		return badRequest("invalid seek time %q", q.Get("t"))
	}
	return s.ctrl.Seek(id, t)
}

// source switches to ?sel=, or to the other allowed selection when absent
func (s *Server) source(r *http.Request, id transport.TrackID) error {
	name := r.URL.Query().Get("sel")
	if name == "" {
		return s.ctrl.CycleSource(id)
	}
	sel, err := transport.ParseSelection(name)
	if err != nil {
		return badRequest("%v", err)
	}
	return s.ctrl.SwitchSource(id, sel)
}

func (s *Server) handleWaveform(w http.ResponseWriter, r *http.Request) {
	id, err := transport.ParseTrackID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	canvas, err := canvasParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st, err := s.ctrl.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}

	colors := render.DefaultColors()
	img := render.Track(canvas, st.View(id), colors)
	if t, ok := st.Track(id); ok && t.Progress > 0 {
		render.Playhead(img, t.Progress, colors.Playhead)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, img); err != nil {
		log.Printf("Error encoding waveform: %v", err)
	}
}

func canvasParams(r *http.Request) (render.Canvas, error) {
	q := r.URL.Query()
	c := render.Canvas{
		Width:      defaultWaveformWidth,
		Height:     defaultWaveformHeight,
		PixelRatio: 1,
	}

	var err error
	if v := q.Get("w"); v != "" {
		if c.Width, err = strconv.Atoi(v); err != nil || c.Width < 1 || c.Width > maxWaveformSide {
			return c, badRequest("invalid width %q", v)
		}
	}
	if v := q.Get("h"); v != "" {
		if c.Height, err = strconv.Atoi(v); err != nil || c.Height < 1 || c.Height > maxWaveformSide {
			return c, badRequest("invalid height %q", v)
		}
	}
	if v := q.Get("dpr"); v != "" {
		if c.PixelRatio, err = strconv.ParseFloat(v, 64); err != nil || c.PixelRatio <= 0 || c.PixelRatio > maxPixelRatio {
			return c, badRequest("invalid pixel ratio %q", v)
		}
	}
	if dw, dh := c.Resize(); dw*dh > maxWaveformPixels {
		return c, badRequest("canvas %dx%d exceeds %d pixels", dw, dh, maxWaveformPixels)
	}
	return c, nil
}
