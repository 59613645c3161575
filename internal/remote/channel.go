package remote

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dyoburon/electron-music-player/internal/session"
)

// DefaultReconnectDelay is the constant pause between connection attempts.
// The delay never grows and attempts never stop until the context ends.
const DefaultReconnectDelay = 5 * time.Second

// Commander is the subset of the session the channel drives on inbound
// commands.
type Commander interface {
	Next()
	SwitchToLibrary()
	SwitchToPlaylistByName(name string)
}

// Conn is the connection surface the channel needs. *websocket.Conn
// satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dialer opens a connection to the control endpoint.
type Dialer interface {
	Dial(url string) (Conn, error)
}

type wsDialer struct {
	d *websocket.Dialer
}

func (w wsDialer) Dial(url string) (Conn, error) {
	conn, _, err := w.d.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Channel maintains the connection to the external control endpoint. It
// decodes inbound commands into Commander calls and publishes session
// status outward. Outbound messages are best-effort: anything produced
// while disconnected is dropped, never queued.
type Channel struct {
	url       string
	commander Commander
	dialer    Dialer
	delay     time.Duration

	mu   sync.Mutex
	conn Conn
}

// Options tune the channel. Zero values select the websocket dialer and
// DefaultReconnectDelay.
type Options struct {
	Dialer         Dialer
	ReconnectDelay time.Duration
}

// New creates a channel targeting the given endpoint URL.
func New(url string, commander Commander, opts Options) *Channel {
	if opts.Dialer == nil {
		opts.Dialer = wsDialer{d: &websocket.Dialer{HandshakeTimeout: 10 * time.Second}}
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	return &Channel{
		url:       url,
		commander: commander,
		dialer:    opts.Dialer,
		delay:     opts.ReconnectDelay,
	}
}

// Run connects and services the control endpoint until ctx is done,
// reconnecting after a fixed delay on every failure or disconnect.
func (c *Channel) Run(ctx context.Context) {
	for {
		conn, err := c.dialer.Dial(c.url)
		if err != nil {
			log.Printf("[REMOTE] Connect to %s failed: %v", c.url, err)
		} else {
			log.Printf("[REMOTE] Connected to %s", c.url)
			c.setConn(conn)
			// The read loop only notices cancellation between messages, so
			// close the connection when ctx ends to unblock a pending read.
			done := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					conn.Close()
				case <-done:
				}
			}()
			c.readLoop(ctx, conn)
			close(done)
			c.setConn(nil)
			conn.Close()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.delay):
		}
	}
}

func (c *Channel) setConn(conn Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// Connected reports whether the channel currently holds an open connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close drops the current connection, unblocking the read loop. Run will
// reconnect unless its context has ended.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (c *Channel) readLoop(ctx context.Context, conn Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[REMOTE] Connection lost: %v", err)
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("[REMOTE] Ignoring malformed message: %v", err)
			continue
		}
		c.dispatch(cmd)
	}
}

func (c *Channel) dispatch(cmd Command) {
	switch cmd.Command {
	case CmdSkip:
		c.commander.Next()
	case CmdPlaylist:
		c.commander.SwitchToPlaylistByName(cmd.Name)
	case CmdLibrary:
		c.commander.SwitchToLibrary()
	default:
		log.Printf("[REMOTE] Ignoring unknown command %q", cmd.Command)
	}
}

// Publish sends a status message if connected, dropping it otherwise.
func (c *Channel) Publish(st Status) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.WriteJSON(st); err != nil {
		log.Printf("[REMOTE] Publish failed: %v", err)
	}
}

// PublishEvent maps a session event onto the outbound status subset for
// that event kind and publishes it.
func (c *Channel) PublishEvent(ev session.Event) {
	var st Status
	switch ev.Type {
	case session.EventTrackChanged:
		src := ev.SourceRef
		name := ev.TrackName
		playing := ev.IsPlaying
		t := ev.CurrentTime
		st = Status{SourceRef: &src, TrackName: &name, IsPlaying: &playing, CurrentTime: &t}
	case session.EventPlayStateChanged:
		playing := ev.IsPlaying
		st = Status{IsPlaying: &playing}
	case session.EventTimeChanged:
		t := ev.CurrentTime
		st = Status{CurrentTime: &t}
	default:
		return
	}
	c.Publish(st)
}
