package speaker

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/varesa/BGtraP/packet"
)

var errNotificationReceived = errors.New("notification received")

type session struct {
	srv    *Server
	conn   net.Conn
	peer   string
	framer *packet.Framer
}

func newSession(srv *Server, conn net.Conn, peer string) *session {
	return &session{
		srv:    srv,
		conn:   conn,
		peer:   peer,
		framer: packet.NewFramer(),
	}
}

// run reads from the connection until the peer goes away. A clean close by
// the peer or a received NOTIFICATION end the session without error.
func (s *session) run() error {
	buf := make([]byte, s.srv.cfg.ReadBufferSize)
	hold := time.Duration(s.srv.cfg.HoldTime) * time.Second

	for {
		if hold > 0 {
			s.conn.SetReadDeadline(time.Now().Add(hold))
		}

		n, err := s.conn.Read(buf)
		if n > 0 {
			s.framer.Write(buf[:n])
			if derr := s.drain(); derr != nil {
				if errors.Is(derr, errNotificationReceived) {
					return nil
				}
				return derr
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if s.framer.Buffered() > 0 {
					glog.V(1).Infof("Discarding %d bytes of incomplete message from %s", s.framer.Buffered(), s.peer)
				}
				return nil
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return fmt.Errorf("hold timer expired")
			}
			return err
		}
	}
}

// drain handles every complete frame buffered in the framer
func (s *session) drain() error {
	for {
		fr, err := s.framer.Next()
		if errors.Is(err, packet.ErrIncompleteFrame) {
			return nil
		}
		if err != nil {
			if n, ok := packet.NewNotificationFromError(err); ok {
				glog.Warningf("Closing session with %s: %s", s.peer, n.String())
			}
			return err
		}

		msg, err := fr.Decode()
		if err != nil {
			glog.Warningf("Skipping malformed message from %s: %v", s.peer, err)
			continue
		}

		if err := s.handle(msg); err != nil {
			return err
		}
	}
}

func (s *session) handle(msg *packet.BGPMessage) error {
	glog.V(2).Infof("Received %d byte message from %s: %+v", msg.Header.Length, s.peer, msg.Body)

	switch body := msg.Body.(type) {
	case *packet.BGPOpen:
		glog.Infof("OPEN from %s: AS%d hold time %d", s.peer, body.AS, body.HoldTime)
		return s.send(&packet.BGPOpen{
			Version:       packet.BGPVersion,
			AS:            s.srv.cfg.LocalAS,
			HoldTime:      s.srv.cfg.HoldTime,
			BGPIdentifier: s.srv.routerID,
		}, &packet.BGPKeepalive{})
	case *packet.BGPKeepalive:
		return s.send(&packet.BGPKeepalive{})
	case *packet.BGPUpdate:
		announced, withdrawn := s.srv.rib.ApplyUpdate(s.peer, body)
		glog.V(1).Infof("UPDATE from %s: %d announced, %d withdrawn", s.peer, announced, withdrawn)
	case *packet.BGPNotification:
		glog.Infof("NOTIFICATION from %s: %s", s.peer, body.String())
		return errNotificationReceived
	}

	return nil
}

func (s *session) send(msgs ...packet.Body) error {
	for _, m := range msgs {
		raw, err := packet.Encode(m)
		if err != nil {
			return fmt.Errorf("Unable to encode message: %w", err)
		}

		if _, err := s.conn.Write(raw); err != nil {
			return fmt.Errorf("Unable to send message to %s: %w", s.peer, err)
		}
	}
	return nil
}
