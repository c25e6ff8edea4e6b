package fitcheck

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/pkg/sanitize"
)

// Service handles fitcheck business logic
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates fitcheck service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func validScore(v int) bool {
	return v >= MinScore && v <= MaxScore
}

// Record stores an assessment for the signed-in user.
// The owner always comes from the verified identity, never from the body.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, req *RecordRequest) (*Assessment, error) {
	if userID == uuid.Nil {
		return nil, ErrNoUser
	}
	if !validScore(req.Mood) || !validScore(req.Stress) || !validScore(req.Energy) {
		return nil, ErrInvalidScore
	}

	notes := sanitize.Text(req.Notes, sanitize.MaxNotes)
	a := &Assessment{
		ID:        uuid.New(),
		UserID:    userID,
		Mood:      req.Mood,
		Stress:    req.Stress,
		Energy:    req.Energy,
		Notes:     sql.NullString{String: notes, Valid: notes != ""},
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	return a, nil
}

// History returns the user's most recent assessments, newest first
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*Assessment, error) {
	if userID == uuid.Nil {
		return nil, ErrNoUser
	}
	items, err := s.repo.ListByUser(ctx, userID, HistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return items, nil
}
