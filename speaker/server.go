package speaker

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/varesa/BGtraP/config"
)

// Server accepts BGP sessions and collects the routes they announce
type Server struct {
	cfg      *config.Config
	routerID uint32
	rib      *RouteTable

	wg       sync.WaitGroup
	sessions atomic.Int64
}

// New creates a Server for cfg
func New(cfg *config.Config, rib *RouteTable) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	id, err := cfg.RouterIDUint32()
	if err != nil {
		return nil, err
	}

	if rib == nil {
		rib = NewRouteTable()
	}

	return &Server{
		cfg:      cfg,
		routerID: id,
		rib:      rib,
	}, nil
}

// RouteTable returns the table all sessions of s write to
func (s *Server) RouteTable() *RouteTable {
	return s.rib
}

// Sessions returns the number of established connections
func (s *Server) Sessions() int64 {
	return s.sessions.Load()
}

// ListenAndServe listens on the configured address until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("Unable to listen on %s: %w", s.cfg.ListenAddr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. When ctx is done the listener and all
// sessions are closed and Serve returns nil once every session has ended.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	glog.Infof("Listening for BGP sessions on %s", ln.Addr())

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("Accept failed: %w", err)
		}

		s.wg.Add(1)
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	peer := conn.RemoteAddr().String()
	active := s.sessions.Add(1)
	glog.Infof("Peer %s connected (%d sessions)", peer, active)

	err := newSession(s, conn, peer).run()

	removed := s.rib.WithdrawPeer(peer)
	remaining := s.sessions.Add(-1)

	switch {
	case err == nil, ctx.Err() != nil:
		glog.Infof("Peer %s disconnected, %d routes removed (%d sessions)", peer, removed, remaining)
	default:
		glog.Warningf("Session with %s failed: %v, %d routes removed (%d sessions)", peer, err, removed, remaining)
	}
}
