package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heimdex/heimdex-editor/internal/api"
	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/library"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/media"
	"github.com/heimdex/heimdex-editor/internal/playback"
	"github.com/heimdex/heimdex-editor/internal/probe"
	"github.com/heimdex/heimdex-editor/internal/snap"
	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/ui"
	"github.com/heimdex/heimdex-editor/internal/viewport"
	"github.com/heimdex/heimdex-editor/internal/watcher"
)

const logFilename = "editor.log"

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// The terminal editor owns stdout and stderr, so logs go to a file.
	logger := logging.NewLogger(cfg.LogLevel())
	if !cfg.Headless() {
		logFile, err := os.OpenFile(filepath.Join(cfg.DataDir(), logFilename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()
		logger = logging.NewLoggerTo(logFile, cfg.LogLevel())
	}
	logger.Info("starting heimdex editor",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"config_file", cfg.ConfigFile(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := library.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  HEIMDEX EDITOR v%-24s ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var prober probe.Prober
	if ff, err := probe.NewFFprobe(cfg.FFprobePath(), logger); err != nil {
		logger.Warn("ffprobe unavailable, imported media will have no metadata", "error", err)
		prober = probe.NewStub(logger)
	} else {
		prober = ff
	}

	librarySvc := library.NewService(repo, prober, logger)
	playbackSvc := playback.NewServer(logger)

	model := timeline.NewModel()
	if !model.SetZoom(cfg.InitialZoom()) && model.Zoom() != cfg.InitialZoom() {
		logger.Warn("initial zoom out of range, using default", "zoom", cfg.InitialZoom())
	}
	for _, t := range timeline.TrackTypes {
		if _, err := model.AddTrack(t); err != nil {
			return fmt.Errorf("failed to create %s track: %w", t, err)
		}
	}

	player, closePlayer := openPlayer(cfg, model, logger)
	defer closePlayer()

	vp := viewport.New(viewport.Config{Model: model, Player: player, Logger: logger})
	defer vp.Close()

	if len(os.Args) > 1 {
		openInitialMedia(os.Args[1], librarySvc, vp, logger)
	}

	resolver := snap.Resolver{
		GridInterval: cfg.SnapGrid(),
		Threshold:    cfg.SnapThreshold(),
		Horizon:      snap.DefaultHorizon,
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Timeline:       model,
		Library:        librarySvc,
		Repository:     repo,
		PlaybackServer: playbackSvc,
		Preview:        vp,
		Logger:         logger,
		StartTime:      startTime,
		DeviceID:       deviceID,
		Version:        config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if folders := cfg.WatchFolders(); len(folders) > 0 {
		w, err := startWatcher(watchCtx, folders, librarySvc, logger)
		if err != nil {
			logger.Warn("folder watching disabled", "error", err)
		} else {
			defer w.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(quitCh) }) }

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	if cfg.TrayEnabled() {
		tray := ui.NewTray(ui.TrayConfig{
			Transport: vp,
			Logger:    logger,
			OnQuit:    quit,
		})
		unsubscribe := model.Subscribe(func(timeline.State) { tray.Refresh() })
		defer unsubscribe()
		go tray.Run()
		defer tray.Quit()
	}

	if cfg.Headless() {
		logger.Info("running in headless mode (no terminal editor)")
		go syncPlayer(vp, quitCh)
		<-quitCh
	} else {
		editor := ui.NewEditor(ui.EditorConfig{
			Timeline:  model,
			Viewport:  vp,
			Resolver:  resolver,
			Logger:    logger,
			CellWidth: cfg.CellWidth(),
			OnQuit:    quit,
		})
		program := tea.NewProgram(editor, tea.WithAltScreen(), tea.WithMouseCellMotion())
		go func() {
			<-quitCh
			program.Quit()
		}()
		if _, err := program.Run(); err != nil {
			logger.Error("terminal editor error", "error", err)
		}
		quit()
	}

	logger.Info("initiating graceful shutdown")
	cancelWatch()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// startWatcher imports the media already in folders and keeps the library in
// step with files added or removed afterwards.
func startWatcher(ctx context.Context, folders []string, svc *library.Service, logger *slog.Logger) (*watcher.FSWatcher, error) {
	w, err := watcher.New(watcher.Config{Logger: logger, Filter: library.IsMediaFile})
	if err != nil {
		return nil, err
	}

	w.OnChange(func(path string, event watcher.EventType) {
		switch event {
		case watcher.EventCreate, watcher.EventModify:
			if _, err := svc.Import(ctx, path); err != nil {
				logger.Warn("auto import failed", "path", logging.SanitizePath(path), "error", err)
			}
		case watcher.EventDelete:
			if _, err := svc.ForgetPath(ctx, path); err != nil {
				logger.Warn("failed to forget media", "path", logging.SanitizePath(path), "error", err)
			}
		}
	})

	watched := 0
	for _, dir := range folders {
		if _, err := svc.ImportFolder(ctx, dir); err != nil {
			logger.Warn("initial folder import failed", "path", logging.SanitizePath(dir), "error", err)
			continue
		}
		if err := w.Watch(ctx, dir); err != nil {
			logger.Warn("failed to watch folder", "path", logging.SanitizePath(dir), "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		w.Stop()
		return nil, fmt.Errorf("no watchable folders in %v", folders)
	}
	return w, nil
}

// openInitialMedia imports the file named on the command line and opens it in
// the player.
func openInitialMedia(path string, svc *library.Service, vp *viewport.Viewport, logger *slog.Logger) {
	m, err := svc.Import(context.Background(), path)
	if err != nil {
		logger.Warn("failed to import media", "path", logging.SanitizePath(path), "error", err)
		return
	}
	if err := vp.LoadMedia(media.Source{Path: m.Path, Duration: m.Duration}); err != nil {
		logger.Warn("failed to open media", "media_id", m.ID, "error", err)
	}
}

// openPlayer connects to mpv when a socket is configured and falls back to
// a virtual clock sized to the timeline.
func openPlayer(cfg config.Config, model *timeline.Model, logger *slog.Logger) (media.Player, func()) {
	if sock := cfg.MPVSocket(); sock != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		p, err := media.DialMPV(ctx, sock, logger)
		if err == nil {
			logger.Info("connected to mpv", "socket", logging.SanitizePath(sock))
			// mpv may already have a file open.
			if d, err := p.Duration(); err == nil {
				model.SetMediaDuration(d)
			}
			return p, func() { p.Close() }
		}
		logger.Warn("mpv unavailable, using clock player", "error", err)
	}

	clock := media.NewClockPlayer(model.MaxDuration())
	unsubscribe := model.Subscribe(func(s timeline.State) {
		clock.SetDuration(s.MaxDuration())
	})
	return clock, unsubscribe
}

func syncPlayer(vp *viewport.Viewport, quitCh <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vp.SyncFromPlayer()
		case <-quitCh:
			return
		}
	}
}

func ensureDeviceID(repo library.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo library.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, api.ConfigKeyAuthToken)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.ConfigKeyAuthToken, token); err != nil {
		return "", err
	}

	return token, nil
}
