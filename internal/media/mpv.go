package media

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/heimdex/heimdex-editor/internal/logging"
)

var ErrMPVClosed = errors.New("mpv connection closed")

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
}

// MPVPlayer controls an mpv instance started with --input-ipc-server.
// Requests are serialized; events interleaved on the socket are skipped.
type MPVPlayer struct {
	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	nextID  int64
	timeout time.Duration
	logger  *slog.Logger
	hint    float64
}

// DialMPV connects to the IPC socket at path.
func DialMPV(ctx context.Context, path string, logger *slog.Logger) (*MPVPlayer, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to dial mpv socket: %w", err)
	}
	return &MPVPlayer{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: 2 * time.Second,
		logger:  logging.OrDiscard(logger),
	}, nil
}

func (p *MPVPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *MPVPlayer) command(args ...any) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil, ErrMPVClosed
	}

	p.nextID++
	id := p.nextID

	payload, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mpv command: %w", err)
	}

	if err := p.conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set mpv deadline: %w", err)
	}
	if _, err := p.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write mpv command: %w", err)
	}

	for {
		line, err := p.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read mpv response: %w", err)
		}
		var resp mpvResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			p.logger.Debug("skipping malformed mpv line", "error", err)
			continue
		}
		if resp.Event != "" || resp.RequestID != id {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], resp.Error)
		}
		return resp.Data, nil
	}
}

func (p *MPVPlayer) CurrentTime() (float64, error) {
	data, err := p.command("get_property", "time-pos")
	if err != nil {
		return 0, err
	}
	var t float64
	if err := json.Unmarshal(data, &t); err != nil {
		return 0, fmt.Errorf("failed to decode time-pos: %w", err)
	}
	return t, nil
}

func (p *MPVPlayer) SetCurrentTime(t float64) error {
	_, err := p.command("seek", t, "absolute")
	return err
}

func (p *MPVPlayer) Play() error {
	_, err := p.command("set_property", "pause", false)
	return err
}

func (p *MPVPlayer) Pause() error {
	_, err := p.command("set_property", "pause", true)
	return err
}

// Paused reports true when the pause state cannot be read.
func (p *MPVPlayer) Paused() bool {
	data, err := p.command("get_property", "pause")
	if err != nil {
		p.logger.Warn("failed to read mpv pause state", "error", err)
		return true
	}
	var paused bool
	if err := json.Unmarshal(data, &paused); err != nil {
		return true
	}
	return paused
}

// Duration reads mpv's duration property. While a file is still opening mpv
// has no duration yet, and the probed length from the last Load is returned.
func (p *MPVPlayer) Duration() (float64, error) {
	data, err := p.command("get_property", "duration")
	if err != nil {
		p.mu.Lock()
		hint := p.hint
		p.mu.Unlock()
		if hint > 0 && !errors.Is(err, ErrMPVClosed) {
			return hint, nil
		}
		return 0, err
	}
	var d float64
	if err := json.Unmarshal(data, &d); err != nil {
		return 0, fmt.Errorf("failed to decode duration: %w", err)
	}
	return d, nil
}

// Load replaces the current file.
func (p *MPVPlayer) Load(src Source) error {
	if _, err := p.command("loadfile", src.Path, "replace"); err != nil {
		return err
	}
	p.mu.Lock()
	p.hint = src.Duration
	p.mu.Unlock()
	return nil
}
