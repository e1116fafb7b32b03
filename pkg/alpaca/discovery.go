package alpaca

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// DiscoveryResponse is the JSON body sent back to a valid discovery
// broadcast.
type DiscoveryResponse struct {
	AlpacaPort int `json:"AlpacaPort"`
}

// DiscoveryService answers UDP "alpacadiscovery1" broadcasts with the API
// port.
type DiscoveryService struct {
	port    int
	apiPort int
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewDiscoveryService builds a discovery responder for the given UDP
// listen port, advertising apiPort.
func NewDiscoveryService(port, apiPort int, logger *zap.Logger) *DiscoveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryService{
		port:    port,
		apiPort: apiPort,
		logger:  logger.With(zap.String("component", "discovery")),
		stopCh:  make(chan struct{}),
	}
}

// Start opens the UDP listener and runs the discovery loop in a background
// goroutine. Returns once the listener is bound.
func (d *DiscoveryService) Start() error {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: d.port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("alpaca: discovery listen: %w", err)
	}
	d.logger.Info("discovery service started", zap.String("address", conn.LocalAddr().String()))
	go d.discoveryLoop(conn)
	return nil
}

// Stop signals the discovery loop to exit.
func (d *DiscoveryService) Stop() {
	close(d.stopCh)
}

func (d *DiscoveryService) discoveryLoop(conn *net.UDPConn) {
	defer func() { _ = conn.Close() }()

	buffer := make([]byte, 1024)
	response, err := json.Marshal(DiscoveryResponse{AlpacaPort: d.apiPort})
	if err != nil {
		d.logger.Error("failed to marshal discovery response", zap.Error(err))
		return
	}

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		n, remoteAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			d.logger.Warn("error reading discovery packet", zap.Error(err))
			continue
		}

		if string(buffer[:n]) != DiscoveryMessage {
			continue
		}

		if _, err := conn.WriteToUDP(response, remoteAddr); err != nil {
			d.logger.Error("failed to send discovery response",
				zap.String("to", remoteAddr.String()), zap.Error(err))
		}
	}
}
