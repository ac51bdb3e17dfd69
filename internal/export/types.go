package export

type ExportRequest struct {
	ProjectName string  `json:"project_name"`
	Format      string  `json:"format"`
	FrameRate   float64 `json:"frame_rate"`
	OutputDir   string  `json:"output_dir"`
	TrackType   string  `json:"track_type,omitempty"`
	TrackID     string  `json:"track_id,omitempty"`
}

// ResolvedClip is one EDL event: a source range placed at a record time.
type ResolvedClip struct {
	ClipName    string
	MediaPath   string
	Channel     string
	SourceInMs  int
	SourceOutMs int
	RecordInMs  int
}

type ExportResponse struct {
	Status          string   `json:"status"`
	Format          string   `json:"format"`
	OutputPath      string   `json:"output_path"`
	ClipCount       int      `json:"clip_count"`
	UnresolvedClips []string `json:"unresolved_clips"`
}
