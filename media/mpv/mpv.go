// Package mpv drives an mpv process over its JSON IPC socket.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"focusdeck/media"
)

const (
	dialTimeout  = 5 * time.Second
	dialInterval = 50 * time.Millisecond
	pauseObserve = 1
)

var ErrClosed = errors.New("mpv connection closed")

// Options configure Start.
type Options struct {
	Binary     string
	SocketPath string
	Log        *zap.Logger
}

type request struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type message struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID *int            `json:"request_id"`
}

// Player implements media.Player. Commands may be issued from any goroutine.
type Player struct {
	cmd  *exec.Cmd
	conn net.Conn
	log  *zap.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	nextID  int
	pending map[int]chan error
	closed  bool

	events    chan media.Event
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	// loaded and paused are only touched by readLoop.
	loaded bool
	paused bool
}

// Start launches mpv in audio-only idle mode and connects to its socket.
func Start(ctx context.Context, opts Options) (*Player, error) {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.SocketPath == "" {
		opts.SocketPath = filepath.Join(os.TempDir(), fmt.Sprintf("focusdeck-mpv-%d.sock", os.Getpid()))
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	_ = os.Remove(opts.SocketPath)

	cmd := exec.Command(opts.Binary,
		"--no-video",
		"--idle=yes",
		"--no-terminal",
		"--input-ipc-server="+opts.SocketPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Binary, err)
	}

	conn, err := dialWithRetry(ctx, opts.SocketPath)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	p := newPlayer(conn, opts.Log)
	p.cmd = cmd
	if err := p.observe(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.markReady()
	return p, nil
}

func dialWithRetry(ctx context.Context, socket string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect mpv ipc %s: %w", socket, err)
		case <-time.After(dialInterval):
		}
	}
}

func newPlayer(conn net.Conn, log *zap.Logger) *Player {
	p := &Player{
		conn:    conn,
		log:     log,
		pending: map[int]chan error{},
		events:  make(chan media.Event, 16),
		done:    make(chan struct{}),
	}
	go p.readLoop()
	return p
}

func (p *Player) observe(ctx context.Context) error {
	return p.command(ctx, "observe_property", pauseObserve, "pause")
}

// Load asks mpv to play the youtube video id, replacing the current file.
func (p *Player) Load(ctx context.Context, videoID string) error {
	return p.command(ctx, "loadfile", "https://www.youtube.com/watch?v="+videoID, "replace")
}

func (p *Player) Play(ctx context.Context) error {
	return p.command(ctx, "set_property", "pause", false)
}

func (p *Player) Pause(ctx context.Context) error {
	return p.command(ctx, "set_property", "pause", true)
}

func (p *Player) Mute(ctx context.Context) error {
	return p.command(ctx, "set_property", "mute", true)
}

func (p *Player) UnMute(ctx context.Context) error {
	return p.command(ctx, "set_property", "mute", false)
}

func (p *Player) SetVolume(ctx context.Context, volume int) error {
	return p.command(ctx, "set_property", "volume", volume)
}

// Events delivers confirmed state changes. The channel is closed when the
// connection ends.
func (p *Player) Events() <-chan media.Event {
	return p.events
}

// Close quits mpv and tears down the connection.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = p.command(ctx, "quit")
		cancel()

		if err := p.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			p.closeErr = err
		}
		<-p.done
		if p.cmd != nil {
			_ = p.cmd.Wait()
		}
	})
	return p.closeErr
}

func (p *Player) command(ctx context.Context, args ...any) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.nextID++
	id := p.nextID
	reply := make(chan error, 1)
	p.pending[id] = reply
	p.mu.Unlock()

	data, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		p.forget(id)
		return err
	}
	p.writeMu.Lock()
	_, err = p.conn.Write(append(data, '\n'))
	p.writeMu.Unlock()
	if err != nil {
		p.forget(id)
		return fmt.Errorf("mpv %v: %w", args[0], err)
	}

	select {
	case err := <-reply:
		if err != nil {
			return fmt.Errorf("mpv %v: %w", args[0], err)
		}
		return nil
	case <-ctx.Done():
		p.forget(id)
		return ctx.Err()
	}
}

func (p *Player) forget(id int) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

func (p *Player) readLoop() {
	defer close(p.done)
	defer close(p.events)

	scanner := bufio.NewScanner(p.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			p.log.Debug("mpv: skip unparsable line", zap.Error(err))
			continue
		}
		if msg.RequestID != nil && msg.Event == "" {
			p.resolve(*msg.RequestID, msg.Error)
			continue
		}
		if ev, ok := p.translate(msg); ok {
			p.emit(ev)
		}
	}

	p.mu.Lock()
	p.closed = true
	for id, reply := range p.pending {
		reply <- ErrClosed
		delete(p.pending, id)
	}
	p.mu.Unlock()
}

func (p *Player) resolve(id int, status string) {
	p.mu.Lock()
	reply, ok := p.pending[id]
	delete(p.pending, id)
	p.mu.Unlock()
	if !ok {
		return
	}
	if status == "" || status == "success" {
		reply <- nil
		return
	}
	reply <- errors.New(status)
}

// markReady reports readiness unless the reader already shut down.
func (p *Player) markReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.emit(media.EventReady)
	}
}

// emit never blocks the reader; a full buffer drops the event.
func (p *Player) emit(ev media.Event) {
	select {
	case p.events <- ev:
	default:
		p.log.Warn("mpv: event dropped", zap.String("event", string(ev)))
	}
}

// translate maps mpv events to player events. Pause changes only count
// while a file is loaded, so the idle player never reports playing.
func (p *Player) translate(msg message) (media.Event, bool) {
	switch msg.Event {
	case "file-loaded":
		p.loaded = true
		return "", false
	case "idle":
		p.loaded = false
		return "", false
	case "pause":
		p.paused = true
		return media.EventPaused, true
	case "unpause":
		p.paused = false
		p.loaded = true
		return media.EventPlaying, true
	case "playback-restart":
		p.loaded = true
		if p.paused {
			return "", false
		}
		return media.EventPlaying, true
	case "end-file":
		p.loaded = false
		return media.EventEnded, true
	case "property-change":
		if msg.Name != "pause" {
			return "", false
		}
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return "", false
		}
		p.paused = paused
		if !p.loaded {
			return "", false
		}
		if paused {
			return media.EventPaused, true
		}
		return media.EventPlaying, true
	}
	return "", false
}
