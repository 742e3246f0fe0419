package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
)

// NodeStore is the block-I/O contract a Server exposes over the wire
// (spec §4.5), satisfied by *blockstore.Node.
type NodeStore interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	Delete(name string) error
}

// Server listens for storage-node connections and serves STORE,
// RETRIEVE and DELETE commands against a NodeStore.
type Server struct {
	Addr  string
	Store NodeStore

	listener net.Listener
}

// ListenAndServe binds the configured address and serves connections
// until Close is called. Each accepted connection is handled in its
// own goroutine, mirroring storage_node_server.py's thread-per-
// connection model.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("transport: listen %s: %w", s.Addr, err)
	}
	s.listener = ln
	logrus.Infof("[transport] storage node server listening on %s", s.Addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			logrus.Warnf("[transport] accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				logrus.Debugf("[transport] connection read error: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case cmdStore:
			if err := s.handleStore(r, w, fields); err != nil {
				logrus.Debugf("[transport] STORE failed: %v", err)
				return
			}
		case cmdRetrieve:
			if err := s.handleRetrieve(w, fields); err != nil {
				logrus.Debugf("[transport] RETRIEVE failed: %v", err)
				return
			}
		case cmdDelete:
			if err := s.handleDelete(w, fields); err != nil {
				logrus.Debugf("[transport] DELETE failed: %v", err)
				return
			}
		default:
			if err := writeError(w, "unknown command"); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleStore(r *bufio.Reader, w *bufio.Writer, fields []string) error {
	if len(fields) != 3 {
		return writeError(w, "STORE requires <name> <size>")
	}
	name := fields[1]
	size, err := parseSize(fields[2])
	if err != nil {
		return writeError(w, err.Error())
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("reading %d byte payload: %w", size, err)
	}
	if err := s.Store.Put(name, data); err != nil {
		return writeError(w, err.Error())
	}
	return writeOK(w)
}

func (s *Server) handleRetrieve(w *bufio.Writer, fields []string) error {
	if len(fields) != 2 {
		return writeError(w, "RETRIEVE requires <name>")
	}
	data, err := s.Store.Get(fields[1])
	if err != nil {
		return writeError(w, err.Error())
	}
	if err := writeOKWithSize(w, len(data)); err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return err
	}
	return w.Flush()
}

func (s *Server) handleDelete(w *bufio.Writer, fields []string) error {
	if len(fields) != 2 {
		return writeError(w, "DELETE requires <name>")
	}
	if err := s.Store.Delete(fields[1]); err != nil {
		return writeError(w, err.Error())
	}
	return writeOK(w)
}
