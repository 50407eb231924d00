package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kevin07696/paytr-processor/internal/domain"
	"github.com/kevin07696/paytr-processor/internal/domain/models"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
	"go.uber.org/zap"
)

const retrieveSessionSQL = `
SELECT id, provider_id, status, COALESCE(amount, 0), data
FROM payment_session
WHERE id = $1`

// RowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore reads the host's payment_session table
type SessionStore struct {
	db           RowQuerier
	queryTimeout time.Duration
	logger       *zap.Logger
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a session store. A zero timeout disables the per-query deadline.
func NewSessionStore(db RowQuerier, queryTimeout time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{db: db, queryTimeout: queryTimeout, logger: logger}
}

// RetrieveSession implements ports.SessionStore
func (s *SessionStore) RetrieveSession(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	var (
		session models.PaymentSession
		status  string
		rawData []byte
	)
	err := s.db.QueryRow(ctx, retrieveSessionSQL, sessionID).
		Scan(&session.ID, &session.ProviderID, &status, &session.Amount, &rawData)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		s.logger.Error("Failed to load payment session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("query payment session: %w", err)
	}

	session.Status = models.PaymentSessionStatus(status)
	if len(rawData) > 0 {
		if err := json.Unmarshal(rawData, &session.Data); err != nil {
			return nil, fmt.Errorf("decode payment session data: %w", err)
		}
	}
	if session.Data == nil {
		session.Data = models.SessionData{}
	}

	return &session, nil
}
