package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-editor/internal/library"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/media"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackGuard())
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/timeline", getTimelineHandler(cfg))
		r.Put("/timeline/zoom", setZoomHandler(cfg))
		r.Put("/timeline/current-time", setCurrentTimeHandler(cfg))

		r.Post("/tracks", addTrackHandler(cfg))
		r.Route("/tracks/{type}/{trackID}/clips", func(r chi.Router) {
			r.Get("/", listClipsHandler(cfg))
			r.Post("/", addClipHandler(cfg))
			r.Patch("/{index}", updateClipHandler(cfg))
			r.Delete("/{index}", deleteClipHandler(cfg))
			r.Post("/{index}/move", moveClipHandler(cfg))
			r.Post("/{index}/split", splitClipHandler(cfg))
		})

		r.Get("/media", listMediaHandler(cfg))
		r.Post("/media", importMediaHandler(cfg))
		r.Get("/media/{id}", getMediaHandler(cfg))
		r.Delete("/media/{id}", deleteMediaHandler(cfg))
		r.Get("/media/{id}/stream", streamMediaHandler(cfg))

		r.Put("/player/media", loadPreviewHandler(cfg))

		r.Post("/export/edl", exportEDLHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := cfg.Version
		if version == "" {
			version = "dev"
		}
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  version,
			UptimeS:  int64(time.Since(cfg.StartTime).Seconds()),
			DeviceID: cfg.DeviceID,
		})
	}
}

func getTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, TimelineToResponse(cfg.Timeline.Snapshot()))
	}
}

func setZoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		levels := timeline.ZoomLevels
		if req.Zoom < levels[0] || req.Zoom > levels[len(levels)-1] {
			WriteError(w, http.StatusBadRequest, "zoom out of range", "BAD_REQUEST")
			return
		}
		cfg.Timeline.SetZoom(req.Zoom)
		WriteJSON(w, http.StatusOK, TimelineToResponse(cfg.Timeline.Snapshot()))
	}
}

func setCurrentTimeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CurrentTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentTime == nil {
			WriteError(w, http.StatusBadRequest, "current_time is required", "BAD_REQUEST")
			return
		}
		cfg.Timeline.SetCurrentTime(*req.CurrentTime)
		WriteJSON(w, http.StatusOK, TimelineToResponse(cfg.Timeline.Snapshot()))
	}
}

func addTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		id, err := cfg.Timeline.AddTrack(req.Type)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		logging.WithTrackID(cfg.Logger, id).Info("track added", "type", req.Type)
		WriteJSON(w, http.StatusCreated, AddTrackResponse{ID: id, Type: req.Type})
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clips, err := cfg.Timeline.Clips(trackParams(r))
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ClipsResponse{Clips: clips})
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		clip := timeline.Clip{
			Name:        req.Name,
			StartTime:   req.StartTime,
			Duration:    req.Duration,
			MediaOffset: req.MediaOffset,
			Thumbnail:   req.Thumbnail,
			MediaID:     req.MediaID,
		}

		if req.MediaID != "" {
			m, err := cfg.Library.Get(r.Context(), req.MediaID)
			if errors.Is(err, library.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
				return
			}
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to load media", "INTERNAL_ERROR")
				return
			}
			if clip.Name == "" {
				clip.Name = m.Filename
			}
			if clip.Duration <= 0 {
				clip.Duration = m.Duration - clip.MediaOffset
			}
		}

		t, trackID := trackParams(r)
		stored, index, err := cfg.Timeline.AddClip(t, trackID, clip)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		logging.WithClipID(cfg.Logger, stored.ID).Info("clip added",
			"track_id", trackID, "start", stored.StartTime, "duration", stored.Duration)
		WriteJSON(w, http.StatusCreated, ClipResponse{Index: index, Clip: stored})
	}
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		var patch timeline.ClipPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		t, trackID := trackParams(r)
		clip, err := cfg.Timeline.UpdateClipChecked(t, trackID, index, patch)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ClipResponse{Index: index, Clip: clip})
	}
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		var req MoveClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StartTime == nil {
			WriteError(w, http.StatusBadRequest, "start_time is required", "BAD_REQUEST")
			return
		}

		t, trackID := trackParams(r)
		clip, err := cfg.Timeline.MoveClipChecked(t, trackID, index, *req.StartTime, req.TargetTrackID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}

		target := trackID
		if req.TargetTrackID != "" {
			target = req.TargetTrackID
		}
		newIndex, _, _ := cfg.Timeline.FindClip(t, target, clip.ID)
		WriteJSON(w, http.StatusOK, ClipResponse{Index: newIndex, Clip: clip})
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		var req SplitClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		at := cfg.Timeline.CurrentTime()
		if req.At != nil {
			at = *req.At
		}

		t, trackID := trackParams(r)
		if err := cfg.Timeline.SplitClip(t, trackID, index, at); err != nil {
			writeTimelineError(w, err)
			return
		}
		clips, _ := cfg.Timeline.Clips(t, trackID)
		WriteJSON(w, http.StatusOK, ClipsResponse{Clips: clips})
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		t, trackID := trackParams(r)
		if err := cfg.Timeline.DeleteClip(t, trackID, index); err != nil {
			writeTimelineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		media, err := cfg.Library.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list media", "INTERNAL_ERROR")
			return
		}
		resp := MediaListResponse{Media: make([]MediaResponse, len(media))}
		for i, m := range media {
			resp.Media[i] = MediaToResponse(m)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func importMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportMediaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		switch {
		case req.Path != "":
			m, err := cfg.Library.Import(r.Context(), req.Path)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			WriteJSON(w, http.StatusCreated, MediaToResponse(m))
		case req.Folder != "":
			media, err := cfg.Library.ImportFolder(r.Context(), req.Folder)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			resp := MediaListResponse{Media: make([]MediaResponse, len(media))}
			for i, m := range media {
				resp.Media[i] = MediaToResponse(m)
			}
			WriteJSON(w, http.StatusCreated, resp)
		default:
			WriteError(w, http.StatusBadRequest, "path or folder is required", "BAD_REQUEST")
		}
	}
}

func getMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := loadMedia(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, MediaToResponse(m))
	}
}

// loadPreviewHandler opens a library item in the player. The timeline grows
// to the media length so the playhead can follow it.
func loadPreviewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Preview == nil {
			WriteError(w, http.StatusServiceUnavailable, "no player attached", "PLAYER_UNAVAILABLE")
			return
		}
		var req PreviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MediaID == "" {
			WriteError(w, http.StatusBadRequest, "media_id is required", "BAD_REQUEST")
			return
		}

		m, err := cfg.Library.Get(r.Context(), req.MediaID)
		if errors.Is(err, library.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load media", "INTERNAL_ERROR")
			return
		}

		if err := cfg.Preview.LoadMedia(media.Source{Path: m.Path, Duration: m.Duration}); err != nil {
			cfg.Logger.Warn("failed to open media in player", "media_id", m.ID, "error", err)
			WriteError(w, http.StatusBadGateway, "player rejected media", "PLAYER_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, TimelineToResponse(cfg.Timeline.Snapshot()))
	}
}

func deleteMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := cfg.Library.Remove(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, library.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to delete media", "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func streamMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := loadMedia(cfg, w, r)
		if !ok {
			return
		}
		if err := cfg.PlaybackServer.ServeFile(w, r, m.Path); err != nil {
			cfg.Logger.Error("playback failed", "media_id", m.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to serve media", "INTERNAL_ERROR")
		}
	}
}

func loadMedia(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*library.Media, bool) {
	m, err := cfg.Library.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, library.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
		return nil, false
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load media", "INTERNAL_ERROR")
		return nil, false
	}
	return m, true
}

func trackParams(r *http.Request) (timeline.TrackType, string) {
	return timeline.TrackType(chi.URLParam(r, "type")), chi.URLParam(r, "trackID")
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		WriteError(w, http.StatusBadRequest, "invalid clip index", "BAD_REQUEST")
		return 0, false
	}
	return index, true
}

func writeTimelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timeline.ErrTrackNotFound), errors.Is(err, timeline.ErrClipNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, timeline.ErrOverlap):
		WriteError(w, http.StatusConflict, err.Error(), "OVERLAP")
	case errors.Is(err, timeline.ErrInvalidTrack),
		errors.Is(err, timeline.ErrMinDuration),
		errors.Is(err, timeline.ErrNegativeStart),
		errors.Is(err, timeline.ErrNegativeMedia):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		WriteError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
