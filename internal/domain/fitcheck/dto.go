package fitcheck

import "time"

// RecordRequest is the body of POST /api/fitcheck
type RecordRequest struct {
	Mood   int    `json:"mood" validate:"required,gte=1,lte=5"`
	Stress int    `json:"stress" validate:"required,gte=1,lte=5"`
	Energy int    `json:"energy" validate:"required,gte=1,lte=5"`
	Notes  string `json:"notes"`
}

// AssessmentResponse for API response
type AssessmentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      int       `json:"mood"`
	Stress    int       `json:"stress"`
	Energy    int       `json:"energy"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts entity to response
func (a *Assessment) ToResponse() *AssessmentResponse {
	resp := &AssessmentResponse{
		ID:        a.ID.String(),
		UserID:    a.UserID.String(),
		Mood:      a.Mood,
		Stress:    a.Stress,
		Energy:    a.Energy,
		CreatedAt: a.CreatedAt,
	}
	if a.Notes.Valid {
		notes := a.Notes.String
		resp.Notes = &notes
	}
	return resp
}
