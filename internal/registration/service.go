package registration

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers domain events to a broker. Implementations live in
// internal/messaging.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// CreatedEvent is published once a registration has been stored.
type CreatedEvent struct {
	ID          uuid.UUID `json:"id"`
	TeamName    string    `json:"team_name"`
	SchoolName  string    `json:"school_name"`
	Track       string    `json:"track"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCreatedEvent(rec *Record) CreatedEvent {
	return CreatedEvent{
		ID:          rec.ID,
		TeamName:    rec.TeamName,
		SchoolName:  rec.SchoolName,
		Track:       rec.Track,
		MemberCount: len(rec.Members),
		CreatedAt:   rec.CreatedAt,
	}
}

type Service interface {
	Submit(ctx context.Context, req Request) (*Record, error)
	List(ctx context.Context) ([]Record, error)
}

type service struct {
	validator *Validator
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
}

// NewService wires the submission flow. publisher may be nil, in which case
// no events are sent.
func NewService(v *Validator, repo Repository, publisher Publisher, logger *slog.Logger) Service {
	return &service{
		validator: v,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit validates req and stores it. A *ValidationError means nothing was
// written. Storage errors wrap ErrStorageUnavailable or ErrStorageRejected and
// are not retried.
func (s *service) Submit(ctx context.Context, req Request) (*Record, error) {
	reg, err := s.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Insert(ctx, NewRecord(reg))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registration stored",
		"id", rec.ID,
		"track", rec.Track,
		"members", len(rec.Members),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rec.ID.String(), NewCreatedEvent(rec)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish registration event", "id", rec.ID, "error", err)
		}
	}

	return rec, nil
}

func (s *service) List(ctx context.Context) ([]Record, error) {
	return s.repo.ListNewestFirst(ctx)
}
