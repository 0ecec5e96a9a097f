package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// passwordMask stands in for a set OBS password in API responses. Posting
// it back keeps the stored password.
const passwordMask = "********"

// maxConfigBody caps POST /api/config bodies.
const maxConfigBody = 1 << 20

// configPatch lists the sections the dashboard may change. Decoding into
// pointers to the current sections merges only the fields present.
type configPatch struct {
	General      *config.GeneralConfig    `json:"general"`
	OBS          *config.OBSConfig        `json:"obs"`
	Recording    *config.RecordingConfig  `json:"recording"`
	Difficulties *config.DifficultyConfig `json:"difficulties"`
	BossNames    *map[int]string          `json:"boss_names"`
}

type configResponse struct {
	Status          string         `json:"status,omitempty"`
	Path            string         `json:"path"`
	Config          *config.Config `json:"config"`
	RestartRequired bool           `json:"restart_required,omitempty"`
}

func maskConfig(cfg *config.Config) *config.Config {
	out := cfg.Clone()
	if out.OBS.Password != "" {
		out.OBS.Password = passwordMask
	}
	return out
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Path:   s.config.Path(),
		Config: maskConfig(s.config.Get()),
	})
}

// handleUpdateConfig merges a partial JSON document into the current
// configuration, validates it and saves it.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context())
	current := s.config.Get()
	next := current.Clone()
	if next.BossNames == nil {
		next.BossNames = map[int]string{}
	}

	patch := configPatch{
		General:      &next.General,
		OBS:          &next.OBS,
		Recording:    &next.Recording,
		Difficulties: &next.Difficulties,
		BossNames:    &next.BossNames,
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfigBody))
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if next.OBS.Password == passwordMask {
		next.OBS.Password = current.OBS.Password
	}
	for id, name := range next.BossNames {
		if name == "" {
			delete(next.BossNames, id)
		}
	}

	if err := s.config.Update(next); err != nil {
		log.Warnf("[WEB] Rejected configuration update: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid configuration",
			"details": errorList(err),
		})
		return
	}
	log.Infof("[WEB] Configuration saved to %s", s.config.Path())
	s.Log("CONFIG", "Configuration updated")

	writeJSON(w, http.StatusOK, configResponse{
		Status:          "saved",
		Path:            s.config.Path(),
		Config:          maskConfig(s.config.Get()),
		RestartRequired: restartRequired(current, next),
	})
}

// restartRequired reports whether a change only takes effect after a
// restart: the OBS connection and the watched log directory are set up once.
func restartRequired(before, after *config.Config) bool {
	return before.OBS != after.OBS ||
		before.General.LogDir != after.General.LogDir ||
		before.General.LogPattern != after.General.LogPattern
}

// errorList flattens an errors.Join tree into messages.
func errorList(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorList(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
