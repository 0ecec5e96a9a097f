package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/livp123/raidrec/internal/utils/logger"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// fileErrorCode maps recording lookup errors to HTTP status codes.
func fileErrorCode(err error) int {
	switch {
	case errors.Is(err, rrerrors.ErrInvalidFilePath):
		return http.StatusForbidden
	case errors.Is(err, rrerrors.ErrRecordingNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, rrerrors.ErrRecordingDirNotSet):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"events": s.events.Entries()})
}

// handleListRecordings returns the recordings with the configured extension,
// newest first.
func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	if s.recordings == nil {
		writeError(w, http.StatusServiceUnavailable, rrerrors.ErrRecordingDirNotSet)
		return
	}
	dir, list, err := s.recordings.List(r.Context())
	if err != nil {
		writeError(w, fileErrorCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recordings": list,
		"directory":  dir,
	})
}

// handleDeleteRecording removes one recording by file name.
func (s *Server) handleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	if s.recordings == nil {
		writeError(w, http.StatusServiceUnavailable, rrerrors.ErrRecordingDirNotSet)
		return
	}
	ctx := r.Context()
	name := r.PathValue("name")
	path, err := s.recordings.Resolve(ctx, name)
	if err != nil {
		logger.Get(ctx).Warnf("[WEB] Rejected delete of %q: %v", name, err)
		writeError(w, fileErrorCode(err), err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, fileErrorCode(err), rrerrors.NewFileError(name, err))
		return
	}
	if err := s.recordings.Delete(ctx, path, "deleted from web GUI"); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.NotifyRecordingsUpdated()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

// handleVideo streams a recording, with range support for seeking.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	if s.recordings == nil {
		writeError(w, http.StatusServiceUnavailable, rrerrors.ErrRecordingDirNotSet)
		return
	}
	name := r.PathValue("name")
	path, err := s.recordings.Resolve(r.Context(), name)
	if err != nil {
		writeError(w, fileErrorCode(err), err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		writeError(w, fileErrorCode(err), rrerrors.NewFileError(name, err))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, rrerrors.ErrRecordingNotFound)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// handleHistory returns stored sessions, newest first. ?limit=N caps the
// result.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, rrerrors.ErrHistoryDisabled)
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, rrerrors.NewConfigError("limit", raw))
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	sessions, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// handleWebSocket upgrades the connection, sends the current status and
// event log, then keeps the client registered until it disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context())
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("[WEB] WebSocket upgrade failed: %v", err)
		return
	}
	conn := NewSafeConn(raw)

	if err := conn.WriteJSON(Message{Type: MessageStatus, Data: s.Status()}); err != nil {
		_ = conn.Close()
		return
	}
	if err := conn.WriteJSON(Message{Type: MessageEventLog, Data: s.events.Entries()}); err != nil {
		_ = conn.Close()
		return
	}
	s.hub.Add(conn)
	defer s.hub.Remove(conn)
	log.Debugf("[WEB] Dashboard connected from %s", r.RemoteAddr)

	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			return
		}
	}
}
