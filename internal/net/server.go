package net

import (
	"fmt"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// Server accepts TCP connections and hands new sessions to the game loop
// over a channel. Dead sessions come back the same way so the loop can
// clean them up in its own goroutine.
type Server struct {
	listener net.Listener
	log      *zap.Logger

	nextID atomic.Uint64

	inQueueSize  int
	outQueueSize int
	pktPerSec    int

	newConns chan *Session
	deadCh   chan *Session

	closed atomic.Bool
}

type ServerConfig struct {
	Bind          string
	InQueueSize   int
	OutQueueSize  int
	PacketsPerSec int
}

func NewServer(cfg ServerConfig, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.Bind)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Bind, err)
	}
	return &Server{
		listener:     ln,
		log:          log,
		inQueueSize:  cfg.InQueueSize,
		outQueueSize: cfg.OutQueueSize,
		pktPerSec:    cfg.PacketsPerSec,
		newConns:     make(chan *Session, 64),
		deadCh:       make(chan *Session, 64),
	}, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// NewSessions is drained by the game loop each tick.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// DeadSessions is drained by the game loop each tick.
func (s *Server) DeadSessions() <-chan *Session {
	return s.deadCh
}

// NotifyDead reports a session whose connection died so the game loop can
// remove its character. Safe to call more than once per session; the loop
// deduplicates by session ID.
func (s *Server) NotifyDead(sess *Session) {
	select {
	case s.deadCh <- sess:
	default:
		s.log.Warn("dead session queue full", zap.Uint64("session", sess.ID))
	}
}

// AcceptLoop blocks accepting connections until Shutdown closes the
// listener. Run it in its own goroutine.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, conn.RemoteAddr().String(), s.inQueueSize, s.outQueueSize, s.pktPerSec, s.log)
		sess.onDead = s.NotifyDead
		sess.Start()

		select {
		case s.newConns <- sess:
			s.log.Info("connection accepted", zap.Uint64("session", id), zap.String("ip", sess.IP))
		default:
			s.log.Warn("new session queue full, rejecting connection", zap.String("ip", sess.IP))
			sess.Close()
		}
	}
}

func (s *Server) Shutdown() {
	s.closed.Store(true)
	s.listener.Close()
}
