package service

import (
	"context"
	"encoding/json"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit logs are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Log records an admin action without blocking the request (fire-and-forget).
func (s *auditService) Log(_ context.Context, entry ports.AuditEntry) {
	rec := &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      entry.ActorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		CreatedAt:    time.Now().UTC(),
	}
	if len(entry.Details) > 0 {
		if b, err := json.Marshal(entry.Details); err == nil {
			rec.Details = string(b)
		}
	}

	go func() {
		s.log.Info().
			Str("actor", rec.ActorID).
			Str("action", string(rec.Action)).
			Str("resource_type", rec.ResourceType).
			Str("resource_id", rec.ResourceID).
			Str("ip", rec.IPAddress).
			Msg("audit")

		if s.repo == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, rec); err != nil {
			s.log.Warn().Err(err).Str("action", string(rec.Action)).Msg("failed to persist audit log")
		}
	}()
}
