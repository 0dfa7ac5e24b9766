package video

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	ipcDialTimeout = 5 * time.Second
	ipcCallTimeout = 2 * time.Second
)

// MPV plays one file in an mpv process controlled over its JSON IPC socket.
type MPV struct {
	cmd    *exec.Cmd
	socket string
	*ipcClient
}

// OpenMPV starts binary paused on uri and connects to its IPC socket. mpv
// starts playback once Start is called; the controller does that when the
// Prepared callback fires.
func OpenMPV(ctx context.Context, binary, uri string, cb Callbacks) (*MPV, error) {
	if binary == "" {
		binary = "mpv"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("video player %q not found: %w", binary, err)
	}
	socket := filepath.Join(os.TempDir(), "viewonly-mpv-"+strconv.Itoa(os.Getpid())+"-"+strconv.FormatInt(time.Now().UnixNano(), 36)+".sock")

	cmd := exec.Command(path,
		"--pause",
		"--keep-open=yes",
		"--force-window=yes",
		"--really-quiet",
		"--input-ipc-server="+socket,
		uri,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", binary, err)
	}

	conn, err := dialSocket(ctx, socket)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, err
	}
	m := &MPV{cmd: cmd, socket: socket, ipcClient: newIPCClient(conn, cb)}
	go cmd.Wait()
	return m, nil
}

func dialSocket(ctx context.Context, socket string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, ipcDialTimeout)
	defer cancel()
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to player socket %s: %w", socket, err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Close quits mpv and removes its socket.
func (m *MPV) Close() error {
	err := m.ipcClient.Close()
	if m.cmd.Process != nil {
		m.cmd.Process.Kill()
	}
	os.Remove(m.socket)
	return err
}

type ipcResponse struct {
	RequestID int             `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
}

// ipcClient speaks mpv's line-delimited JSON protocol over conn.
type ipcClient struct {
	conn io.ReadWriteCloser
	cb   Callbacks
	wmu  sync.Mutex // one command line per write

	mu      sync.Mutex
	nextID  int
	pending map[int]chan ipcResponse
	closed  bool

	prepared  atomic.Bool
	rendering atomic.Bool
	done      chan struct{}
}

func newIPCClient(conn io.ReadWriteCloser, cb Callbacks) *ipcClient {
	c := &ipcClient{
		conn:    conn,
		cb:      cb,
		pending: make(map[int]chan ipcResponse),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *ipcClient) readLoop() {
	defer close(c.done)
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var r ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if r.Event != "" {
			c.handleEvent(r.Event)
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[r.RequestID]
		delete(c.pending, r.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- r
		}
	}
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
	c.mu.Unlock()
}

func (c *ipcClient) handleEvent(event string) {
	switch event {
	case "file-loaded":
		if !c.prepared.Swap(true) && c.cb.Prepared != nil {
			go c.cb.Prepared()
		}
	case "playback-restart":
		if c.prepared.Load() && !c.rendering.Swap(true) && c.cb.RenderingStarted != nil {
			go c.cb.RenderingStarted()
		}
	case "end-file":
		c.prepared.Store(false)
	}
}

func (c *ipcClient) call(args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	ch := make(chan ipcResponse, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	line, err := json.Marshal(map[string]any{"command": args, "request_id": id})
	if err != nil {
		return nil, err
	}
	c.wmu.Lock()
	_, err = c.conn.Write(append(line, '\n'))
	c.wmu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("player command failed: %w", err)
	}

	select {
	case r, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if r.Error != "success" {
			return nil, fmt.Errorf("player command %v: %s", args[0], r.Error)
		}
		return r.Data, nil
	case <-time.After(ipcCallTimeout):
		c.forget(id)
		return nil, fmt.Errorf("player command %v: timed out", args[0])
	}
}

func (c *ipcClient) forget(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *ipcClient) requirePrepared() error {
	if !c.prepared.Load() {
		return ErrNotPrepared
	}
	return nil
}

func (c *ipcClient) getFloat(name string) (float64, error) {
	if err := c.requirePrepared(); err != nil {
		return 0, err
	}
	data, err := c.call("get_property", name)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decoding %s: %w", name, err)
	}
	return v, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (c *ipcClient) IsPlaying() (bool, error) {
	if err := c.requirePrepared(); err != nil {
		return false, err
	}
	data, err := c.call("get_property", "pause")
	if err != nil {
		return false, err
	}
	var paused bool
	if err := json.Unmarshal(data, &paused); err != nil {
		return false, fmt.Errorf("decoding pause: %w", err)
	}
	return !paused, nil
}

func (c *ipcClient) Duration() (time.Duration, error) {
	v, err := c.getFloat("duration")
	return seconds(v), err
}

func (c *ipcClient) Position() (time.Duration, error) {
	v, err := c.getFloat("time-pos")
	return seconds(v), err
}

func (c *ipcClient) Start() error {
	_, err := c.call("set_property", "pause", false)
	return err
}

func (c *ipcClient) Pause() error {
	_, err := c.call("set_property", "pause", true)
	return err
}

func (c *ipcClient) SeekTo(pos time.Duration) error {
	if err := c.requirePrepared(); err != nil {
		return err
	}
	_, err := c.call("seek", pos.Seconds(), "absolute", "exact")
	return err
}

// Close asks the player to quit and closes the connection.
func (c *ipcClient) Close() error {
	c.call("quit")
	err := c.conn.Close()
	<-c.done
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}
