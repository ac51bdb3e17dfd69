package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/viewport"
)

// Transport is the part of the viewport the tray drives.
type Transport interface {
	TogglePlay()
	Playing() bool
	ZoomIn() bool
	ZoomOut() bool
	CanZoomIn() bool
	CanZoomOut() bool
	Frame() viewport.Frame
}

type Tray struct {
	transport Transport
	logger    *slog.Logger

	statusItem  *systray.MenuItem
	playItem    *systray.MenuItem
	zoomInItem  *systray.MenuItem
	zoomOutItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Transport Transport
	Logger    *slog.Logger
	OnQuit    func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		transport: cfg.Transport,
		logger:    logging.WithComponent(logging.OrDiscard(cfg.Logger), "tray"),
		onQuit:    cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes())
	systray.SetTitle("Heimdex")
	systray.SetTooltip("Heimdex Editor")

	status := systray.AddMenuItem(statusTitle(t.transport.Frame()), "Playhead and zoom")
	status.Disable()

	systray.AddSeparator()

	play := systray.AddMenuItem(playTitle(t.transport.Playing()), "Toggle playback")
	zoomIn := systray.AddMenuItem("Zoom In", "Next zoom level")
	zoomOut := systray.AddMenuItem("Zoom Out", "Previous zoom level")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Heimdex Editor")

	t.mu.Lock()
	t.statusItem, t.playItem, t.zoomInItem, t.zoomOutItem = status, play, zoomIn, zoomOut
	t.mu.Unlock()
	t.Refresh()

	go func() {
		for {
			select {
			case <-play.ClickedCh:
				t.transport.TogglePlay()
				t.Refresh()
			case <-zoomIn.ClickedCh:
				t.transport.ZoomIn()
				t.Refresh()
			case <-zoomOut.ClickedCh:
				t.transport.ZoomOut()
				t.Refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

// Refresh updates item titles and enabled states from the transport.
func (t *Tray) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playItem == nil {
		return
	}
	t.statusItem.SetTitle(statusTitle(t.transport.Frame()))
	t.playItem.SetTitle(playTitle(t.transport.Playing()))
	setEnabled(t.zoomInItem, t.transport.CanZoomIn())
	setEnabled(t.zoomOutItem, t.transport.CanZoomOut())
}

func (t *Tray) Quit() {
	systray.Quit()
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

func playTitle(playing bool) string {
	if playing {
		return "Pause"
	}
	return "Play"
}

func statusTitle(f viewport.Frame) string {
	return fmt.Sprintf("%s  @ %gpx/s", viewport.FormatTime(f.CurrentTime, 0), f.Zoom)
}
