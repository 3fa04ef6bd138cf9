package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/duskhaven/server/internal/net/packet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one client connection. The read and write loops run in their
// own goroutines and touch only the connection and the channels; everything
// else belongs to the game loop goroutine.
type Session struct {
	ID   uint64
	conn netConn

	state atomic.Int32 // packet.SessionState

	InQueue  chan []byte // game loop consumes inbound packets from here
	OutQueue chan []byte // writeLoop consumes outbound packets from here

	IP          string
	AccountName string
	CharName    string

	// EnterToken is minted at login and must be echoed by the enter-world
	// request. Game loop only.
	EnterToken uuid.UUID

	outBuf [][]byte // flushed once per tick by the output system

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// onDead is set by the server before Start and runs once when the
	// session closes, from whichever goroutine closed it.
	onDead func(*Session)

	// Per-second inbound rate limit. readLoop goroutine only.
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	log *zap.Logger
}

// netConn is the subset of net.Conn the session uses; tests substitute a
// pipe-backed fake.
type netConn interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
	SetWriteDeadline(t time.Time) error
}

func NewSession(conn netConn, id uint64, remoteAddr string, inSize, outSize, pktPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:        id,
		conn:      conn,
		InQueue:   make(chan []byte, inSize),
		OutQueue:  make(chan []byte, outSize),
		IP:        remoteAddr,
		closeCh:   make(chan struct{}),
		pktPerSec: pktPerSec,
		log:       log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet. Nothing reaches the socket until FlushOutput runs
// at the output phase. Game loop goroutine only.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput drains the output buffer into OutQueue for the writeLoop.
// Non-blocking: a full queue means the client cannot keep up, and the
// session is dropped rather than stalling the game loop.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("out queue full, dropping slow session")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
		if s.onDead != nil {
			s.onDead(s)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop reads frames off the connection and pushes them onto InQueue.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, dropping session", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Block rather than drop: the loop is per-session, so backpressure
		// only stalls this client, and dropped packets desync its state.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop writes queued packets to the connection as framed data.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOne(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOne(data []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := WriteFrame(s.conn, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
