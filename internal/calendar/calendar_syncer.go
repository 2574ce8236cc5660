package calendar

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Syncer mirrors leave requests into the external calendar and remembers
// the created event so it can be removed later.
type Syncer struct {
	provider Provider
	repo     Repository
	logger   *zap.Logger
}

func NewSyncer(provider Provider, repo Repository, logger ...*zap.Logger) *Syncer {
	l := zap.L().Named("calendar.syncer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.syncer")
	}
	if provider == nil {
		provider = NoopProvider{}
	}
	return &Syncer{provider: provider, repo: repo, logger: l}
}

func (s *Syncer) AddEntry(ctx context.Context, absence Absence) error {
	existing, err := s.repo.FindByApplication(ctx, absence.ApplicationID, AbsenceVacation)
	if err != nil {
		return fmt.Errorf("find absence mapping: %w", err)
	}
	if existing != nil {
		s.logger.Debug("calendar entry already exists", zap.Int64("leave_id", absence.ApplicationID))
		return nil
	}

	eventID, err := s.provider.AddEntry(ctx, absence)
	if err != nil {
		return fmt.Errorf("add calendar entry: %w", err)
	}
	if eventID == "" {
		return nil
	}

	mapping := &AbsenceMapping{
		ApplicationID: absence.ApplicationID,
		Type:          AbsenceVacation,
		EventID:       eventID,
	}
	if err := s.repo.Create(ctx, mapping); err != nil {
		return fmt.Errorf("save absence mapping: %w", err)
	}

	s.logger.Info("calendar entry added",
		zap.Int64("leave_id", absence.ApplicationID),
		zap.String("event_id", eventID),
	)
	return nil
}

// RemoveEntry is a no-op for requests that never reached the calendar.
func (s *Syncer) RemoveEntry(ctx context.Context, applicationID int64) error {
	mapping, err := s.repo.FindByApplication(ctx, applicationID, AbsenceVacation)
	if err != nil {
		return fmt.Errorf("find absence mapping: %w", err)
	}
	if mapping == nil {
		return nil
	}

	if err := s.provider.RemoveEntry(ctx, mapping.EventID); err != nil {
		return fmt.Errorf("remove calendar entry: %w", err)
	}
	if err := s.repo.Delete(ctx, mapping.ID); err != nil {
		return fmt.Errorf("delete absence mapping: %w", err)
	}

	s.logger.Info("calendar entry removed",
		zap.Int64("leave_id", applicationID),
		zap.String("event_id", mapping.EventID),
	)
	return nil
}
