package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// exportEDLHandler writes one track of the timeline as a CMX3600 EDL. With
// no track named, the first video track is exported.
func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Format == "" {
			req.Format = "edl"
		}
		if strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		trackType := timeline.TrackVideo
		if req.TrackType != "" {
			trackType = timeline.TrackType(req.TrackType)
		}
		if !trackType.Valid() {
			WriteError(w, http.StatusBadRequest, "invalid track_type", "BAD_REQUEST")
			return
		}

		state := cfg.Timeline.Snapshot()
		var track timeline.Track
		var found bool
		if req.TrackID != "" {
			track, found = state.Track(trackType, req.TrackID)
		} else if tracks := state.Tracks[trackType]; len(tracks) > 0 {
			track, found = tracks[0], true
		}
		if !found {
			WriteError(w, http.StatusNotFound, "track not found", "NOT_FOUND")
			return
		}
		if len(track.Clips) == 0 {
			WriteError(w, http.StatusBadRequest, "track has no clips", "BAD_REQUEST")
			return
		}

		projectName := export.ProjectName(req.ProjectName)

		frameRate := req.FrameRate
		if frameRate <= 0 {
			frameRate = 30.0
		}

		resolvedClips, unresolvedClips := export.FromTrack(trackType, track.Clips, resolverFor(r.Context(), cfg))
		if len(resolvedClips) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no clips could be resolved", "UNRESOLVABLE_CLIPS")
			return
		}

		edl := export.GenerateEDL(resolvedClips, projectName, frameRate)
		outputPath, err := export.WriteFile(req.OutputDir, projectName, ".edl", []byte(edl))
		if err != nil {
			cfg.Logger.Error("edl export failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		cfg.Logger.Info("edl exported",
			"track_id", track.ID,
			"clips", len(resolvedClips),
			"unresolved", len(unresolvedClips),
		)

		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:          "ok",
			Format:          "edl",
			OutputPath:      outputPath,
			ClipCount:       len(resolvedClips),
			UnresolvedClips: unresolvedClips,
		})
	}
}

func resolverFor(ctx context.Context, cfg ServerConfig) export.MediaResolver {
	return func(mediaID string) (string, bool) {
		return cfg.Library.Resolve(ctx, mediaID)
	}
}
