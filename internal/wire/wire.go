// Package wire carries render jobs between the server and its workers.
//
// Every message is a 4 byte big-endian length followed by a JSON document. The server sends
// a job and waits for its result before sending the next one, so an Endpoint has at most one
// job in flight. The same framing runs over plain TCP and over websocket connections.
package wire

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/bytedance/sonic"

	mandel "github.com/marben/gray_mandel"
)

// MaxFrame bounds the size of a single message.
const MaxFrame = 64 << 20

var (
	// ErrRemote wraps errors reported by the worker for a job.
	ErrRemote = errors.New("remote worker")

	errFrameTooLarge = errors.New("frame too large")
)

type jobMsg struct {
	ID     uint64  `json:"id"`
	ULRe   float64 `json:"ul_re"`
	ULIm   float64 `json:"ul_im"`
	LRRe   float64 `json:"lr_re"`
	LRIm   float64 `json:"lr_im"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	RowMin int     `json:"row_min"`
	RowMax int     `json:"row_max"`
	Limit  int     `json:"limit"`
}

func newJobMsg(j mandel.Job) jobMsg {
	return jobMsg{
		ID:     j.ID,
		ULRe:   real(j.Viewport.UpperLeft),
		ULIm:   imag(j.Viewport.UpperLeft),
		LRRe:   real(j.Viewport.LowerRight),
		LRIm:   imag(j.Viewport.LowerRight),
		Width:  j.Bounds.Width,
		Height: j.Bounds.Height,
		RowMin: j.Band.RowMin,
		RowMax: j.Band.RowMax,
		Limit:  j.Limit,
	}
}

func (m jobMsg) job() mandel.Job {
	return mandel.Job{
		ID: m.ID,
		Viewport: mandel.Viewport{
			UpperLeft:  complex(m.ULRe, m.ULIm),
			LowerRight: complex(m.LRRe, m.LRIm),
		},
		Bounds: mandel.Bounds{Width: m.Width, Height: m.Height},
		Band:   mandel.Band{RowMin: m.RowMin, RowMax: m.RowMax},
		Limit:  m.Limit,
	}
}

type resultMsg struct {
	ID     uint64 `json:"id"`
	Pixels []byte `json:"pixels,omitempty"`
	Err    string `json:"err,omitempty"`
}

// Endpoint is one end of a worker connection.
type Endpoint struct {
	rwc io.ReadWriteCloser

	mu sync.Mutex // one job in flight

	closeOnce sync.Once
	closeErr  error
}

func NewEndpoint(rwc io.ReadWriteCloser) *Endpoint {
	return &Endpoint{rwc: rwc}
}

// RemoteAddr returns the peer address if the endpoint runs over a net.Conn.
func (e *Endpoint) RemoteAddr() string {
	if c, ok := e.rwc.(net.Conn); ok && c.RemoteAddr() != nil {
		return c.RemoteAddr().String()
	}
	return "unknown"
}

func (e *Endpoint) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.rwc.Close()
	})
	return e.closeErr
}

// RenderJob sends job to the worker on the other end and waits for its pixels.
// Cancelling ctx closes the endpoint.
func (e *Endpoint) RenderJob(ctx context.Context, job mandel.Job) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { e.Close() })
	defer stop()

	if err := e.write(newJobMsg(job)); err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("send job %d: %w", job.ID, err))
	}

	var res resultMsg
	if err := e.read(&res); err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("receive result %d: %w", job.ID, err))
	}
	if res.ID != job.ID {
		return nil, fmt.Errorf("result for job %d, want %d", res.ID, job.ID)
	}
	if res.Err != "" {
		return nil, fmt.Errorf("%w: job %d: %s", ErrRemote, job.ID, res.Err)
	}
	if want := job.Bounds.Width * job.Band.Rows(); len(res.Pixels) != want {
		return nil, fmt.Errorf("job %d: got %d bytes, want %d", job.ID, len(res.Pixels), want)
	}
	return res.Pixels, nil
}

var _ mandel.Renderer = (*Endpoint)(nil)

// Serve answers jobs from the other end with r until the connection is closed.
// A closed connection ends Serve with a nil error; a cancelled ctx with ctx.Err().
func (e *Endpoint) Serve(ctx context.Context, r mandel.Renderer) error {
	stop := context.AfterFunc(ctx, func() { e.Close() })
	defer stop()

	for {
		var msg jobMsg
		if err := e.read(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isClosed(err) {
				return nil
			}
			return fmt.Errorf("receive job: %w", err)
		}

		job := msg.job()
		res := resultMsg{ID: job.ID}
		pixels, err := r.RenderJob(ctx, job)
		if err != nil {
			res.Err = err.Error()
		} else {
			res.Pixels = pixels
		}

		if err := e.write(res); err != nil {
			return ctxErr(ctx, fmt.Errorf("send result %d: %w", job.ID, err))
		}
	}
}

func (e *Endpoint) write(v any) error {
	body, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	if len(body) > MaxFrame {
		return errFrameTooLarge
	}

	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	_, err = e.rwc.Write(frame)
	return err
}

func (e *Endpoint) read(v any) error {
	var hdr [4]byte
	if _, err := io.ReadFull(e.rwc, hdr[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrame {
		return errFrameTooLarge
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(e.rwc, body); err != nil {
		return err
	}
	return sonic.Unmarshal(body, v)
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}

// ctxErr prefers the context's error so callers can tell cancellation from a broken peer.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", context.Cause(ctx), err)
	}
	return err
}
