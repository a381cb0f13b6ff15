// Package preview streams an animation to browsers while it renders.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/nestpoly/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	minDelay   = time.Millisecond
)

// Stream sends the frames of one animation over a websocket as PNG
// binary messages, looping until the peer goes away.
type Stream struct {
	conn  *websocket.Conn
	anim  *engine.Animator
	delay time.Duration
	id    string

	enc png.Encoder
	buf bytes.Buffer
	log *slog.Logger

	sent int
}

// NewStream takes ownership of conn and anim. anim must not be
// configured yet.
func NewStream(conn *websocket.Conn, anim *engine.Animator, id string) *Stream {
	return &Stream{
		conn:  conn,
		anim:  anim,
		delay: max(anim.Options().Delay, minDelay),
		id:    id,
		enc:   png.Encoder{CompressionLevel: png.BestSpeed},
		log:   slog.With("preview", id),
	}
}

// Run streams frames until ctx is cancelled, the peer closes the
// connection or a write fails. The connection and animator are closed on
// return.
func (s *Stream) Run(ctx context.Context) error {
	defer s.anim.Close()
	defer s.conn.Close(websocket.StatusNormalClosure, "")

	if err := s.anim.Configure(); err != nil {
		s.conn.Close(websocket.StatusInternalError, "configure failed")
		return err
	}

	// Incoming messages are discarded; ctx ends when the peer closes.
	ctx = s.conn.CloseRead(ctx)

	frameTick := time.NewTicker(s.delay)
	pingTick := time.NewTicker(pingPeriod)
	defer frameTick.Stop()
	defer pingTick.Stop()

	s.log.Debug("preview started", "layers", s.anim.Layers(), "size", s.anim.Size(), "delay", s.delay)
	defer func() { s.log.Debug("preview stopped", "sent", s.sent) }()

	for {
		for i, img := range s.anim.Frames() {
			if err := s.send(ctx, img); err != nil {
				return fmt.Errorf("send frame %d: %w", i, err)
			}
			if err := s.wait(ctx, frameTick, pingTick); err != nil {
				return err
			}
		}
		if err := s.anim.Err(); err != nil {
			return err
		}
	}
}

func (s *Stream) send(ctx context.Context, img image.Image) error {
	s.buf.Reset()
	if err := s.enc.Encode(&s.buf, img); err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := s.conn.Write(writeCtx, websocket.MessageBinary, s.buf.Bytes()); err != nil {
		return err
	}
	s.sent++
	return nil
}

// wait blocks until the next frame is due, pinging the peer meanwhile.
func (s *Stream) wait(ctx context.Context, frameTick, pingTick *time.Ticker) error {
	for {
		select {
		case <-frameTick.C:
			return nil

		case <-pingTick.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sent returns the number of frames delivered so far.
func (s *Stream) Sent() int { return s.sent }
