// Package auditlog optionally records dispatched ASCOM operations to
// Postgres for diagnostics; pkg/alpaca records one Entry per dispatched
// PUT, filling the device, operation, method, client transaction ID and
// error fields (the remaining Entry fields are left empty). It is off unless a
// database URL is configured; no core operation depends on a write
// succeeding.
package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nexstar-alpaca/bridge/pkg/healthcheck"
)

// Entry is one recorded operation.
type Entry struct {
	DeviceNumber        int
	Operation           string
	Method              string
	ClientTransactionID uint32
	ServerTransactionID uint32
	Params              string
	ResultValue         string
	ErrorNumber         int
	ErrorMessage        string
	WireRequest         string
	WireResponse        string
}

// Log writes audit entries to a Postgres table. A nil *Log is valid and
// Record becomes a no-op.
type Log struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to the given Postgres URL and ensures the audit table
// exists.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Log, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach audit database: %w", err)
	}

	const ddl = `
		CREATE TABLE IF NOT EXISTS operation_audit (
			id                     BIGSERIAL PRIMARY KEY,
			device_number          INT NOT NULL,
			operation              TEXT NOT NULL,
			method                 TEXT NOT NULL,
			client_transaction_id  BIGINT NOT NULL,
			server_transaction_id  BIGINT NOT NULL,
			params                 TEXT,
			result_value           TEXT,
			error_number           INT NOT NULL,
			error_message          TEXT,
			wire_request           TEXT,
			wire_response          TEXT,
			recorded_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to provision audit table: %w", err)
	}

	return &Log{pool: pool, logger: logger.With(zap.String("component", "auditlog"))}, nil
}

// Record inserts an audit entry. Failures are logged, not returned.
func (l *Log) Record(ctx context.Context, e Entry) {
	if l == nil || l.pool == nil {
		return
	}

	const query = `
		INSERT INTO operation_audit
			(device_number, operation, method, client_transaction_id, server_transaction_id,
			 params, result_value, error_number, error_message, wire_request, wire_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := l.pool.Exec(ctx, query,
		e.DeviceNumber, e.Operation, e.Method, e.ClientTransactionID, e.ServerTransactionID,
		e.Params, e.ResultValue, e.ErrorNumber, e.ErrorMessage, e.WireRequest, e.WireResponse)
	if err != nil {
		l.logger.Warn("failed to record audit entry",
			zap.String("operation", e.Operation), zap.Error(err))
	}
}

// Close releases the connection pool.
func (l *Log) Close() {
	if l == nil || l.pool == nil {
		return
	}
	l.pool.Close()
}

// Check implements healthcheck.Checker, pinging the audit database.
func (l *Log) Check(ctx context.Context) *healthcheck.Result {
	status := healthcheck.StatusHealthy
	message := "audit database reachable"
	if l == nil || l.pool == nil {
		status = healthcheck.StatusUnhealthy
		message = "audit log not configured"
	} else if err := l.pool.Ping(ctx); err != nil {
		status = healthcheck.StatusUnhealthy
		message = fmt.Sprintf("audit database ping failed: %v", err)
	}
	return &healthcheck.Result{
		ComponentName: l.Name(),
		Status:        status,
		Message:       message,
		Timestamp:     time.Now(),
	}
}

// Name implements healthcheck.Checker.
func (l *Log) Name() string { return "audit_log" }
