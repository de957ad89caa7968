// Package nats runs the embedded JetStream server that backs the nats
// workspace store.
package nats

import (
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// StartEmbeddedNATS starts an in-process NATS server with JetStream storing
// its files under dataDir. No network port is opened.
func StartEmbeddedNATS(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}
	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess opens a connection that talks to ns without sockets.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS in-process: %w", err)
	}
	return conn, nil
}

// Embedded bundles a running server with its in-process connection.
type Embedded struct {
	Server *server.Server
	Conn   *nats.Conn
	JS     jetstream.JetStream
}

// Start brings up an embedded server under dataDir and connects to it.
func Start(dataDir string) (*Embedded, error) {
	ns, err := StartEmbeddedNATS(dataDir)
	if err != nil {
		return nil, err
	}
	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &Embedded{Server: ns, Conn: nc, JS: js}, nil
}

// Close drains the connection and stops the server.
func (e *Embedded) Close() error {
	return Shutdown(e.Conn, e.Server)
}

// Shutdown drains nc (forcing a close if draining stalls) and then stops ns.
// Either argument may be nil.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drained := make(chan error, 1)
		go func() { drained <- nc.Drain() }()

		select {
		case err := <-drained:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(drainTimeout):
			logger.Warn("NATS drain timed out after %s, forcing close", drainTimeout)
			nc.Close()
		}
	}

	if ns == nil {
		return nil
	}
	ns.Shutdown()

	done := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(done)
	}()
	select {
	case <-done:
		logger.Debug("NATS server shut down cleanly")
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("NATS server shutdown timed out")
	}
}
