package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
	"sanitycsv/internal/secret"
	"sanitycsv/internal/sink"
)

// ─────────────────────────────────────────────────────────────
// Sink Service — database destinations for exports
// ─────────────────────────────────────────────────────────────

// SinkService resolves configured sinks and their passwords and opens
// a connector per write. Sinks come from the config file; passwords
// come from the secret store.
type SinkService struct {
	mu      sync.RWMutex
	sinks   []domain.SinkConnection
	secrets secret.SecretStore
}

// NewSinkService creates a SinkService for the given sinks.
func NewSinkService(sinks []domain.SinkConnection, secrets secret.SecretStore) *SinkService {
	s := &SinkService{secrets: secrets}
	s.UpdateSinks(sinks)
	return s
}

// UpdateSinks replaces the configured sinks after a config reload.
func (s *SinkService) UpdateSinks(sinks []domain.SinkConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append([]domain.SinkConnection(nil), sinks...)
}

// ListSinks returns the configured sinks. Passwords are never included.
func (s *SinkService) ListSinks() []domain.SinkConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SinkConnection{}, s.sinks...)
}

// GetSink returns the sink configured under name.
func (s *SinkService) GetSink(name string) (*domain.SinkConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sinks {
		if s.sinks[i].Name == name {
			c := s.sinks[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("sink %q is not configured", name)
}

// SetPassword stores the password for a configured sink.
func (s *SinkService) SetPassword(name, password string) error {
	conn, err := s.GetSink(name)
	if err != nil {
		return err
	}
	if s.secrets == nil {
		return fmt.Errorf("no secret store available")
	}
	if err := s.secrets.Set(conn.SecretKey(), []byte(password)); err != nil {
		return fmt.Errorf("store password for %s: %w", name, err)
	}
	return nil
}

// TestSink opens the sink and pings it.
func (s *SinkService) TestSink(ctx context.Context, name string) error {
	c, err := s.connect(name)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.TestConnection(ctx); err != nil {
		return fmt.Errorf("test sink %s: %w", name, err)
	}
	return nil
}

// Write stores rows restricted to fields into table on the named sink.
func (s *SinkService) Write(ctx context.Context, name, table string, fields []string, rows []export.Record, mode sink.WriteMode) (int, error) {
	c, err := s.connect(name)
	if err != nil {
		return 0, err
	}
	defer c.Close()

	n, err := c.WriteTable(ctx, table, fields, rows, mode)
	if err != nil {
		return n, fmt.Errorf("write to sink %s: %w", name, err)
	}
	log.Printf("[SINK] %s: wrote %d row(s) to %s (%s)", name, n, table, mode)
	return n, nil
}

func (s *SinkService) connect(name string) (sink.Connector, error) {
	conn, err := s.GetSink(name)
	if err != nil {
		return nil, err
	}
	var password string
	if s.secrets != nil && conn.Driver != domain.SinkDriverSQLite {
		pw, err := s.secrets.Get(conn.SecretKey())
		if err != nil {
			return nil, fmt.Errorf("read password for %s: %w", name, err)
		}
		password = string(pw)
	}
	return sink.NewConnector(conn, password)
}
