package ports

import (
	"context"

	"github.com/kevin07696/paytr-processor/internal/domain/models"
)

// SessionStore reads payment sessions owned by the host platform.
// RetrieveSession returns domain.ErrSessionNotFound when no row matches.
type SessionStore interface {
	RetrieveSession(ctx context.Context, sessionID string) (*models.PaymentSession, error)
}
