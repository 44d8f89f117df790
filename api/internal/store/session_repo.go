package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = sql.ErrNoRows

const (
	SessionPending   = "pending"
	SessionCompleted = "completed"
)

type Session struct {
	ID             uuid.UUID
	UserID         string
	DeviceCategory string
	ImageHashes    []string
	SymptomsText   string
	Status         string
	AIAnalysis     json.RawMessage
	RepairGuidance json.RawMessage
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

func (r *SessionRepo) Create(ctx context.Context, s *Session) error {
	hashes, _ := json.Marshal(s.ImageHashes)
	const q = `
insert into diagnostic_sessions (id, user_id, device_category, image_hashes, symptoms_text, status)
values ($1,$2,$3,$4,$5,$6)`
	_, err := r.DB.ExecContext(ctx, q,
		s.ID, s.UserID, s.DeviceCategory, hashes, s.SymptomsText, SessionPending)
	return err
}

// Complete marks the session terminal and stores the computed analysis and
// guidance. The session state machine has no failed state; this is the only
// transition.
func (r *SessionRepo) Complete(ctx context.Context, id uuid.UUID, analysis, guidance any) error {
	aj, _ := json.Marshal(analysis)
	gj, _ := json.Marshal(guidance)
	const q = `
update diagnostic_sessions
set status=$2, ai_analysis=$3, repair_guidance=$4, completed_at=now()
where id=$1`
	res, err := r.DB.ExecContext(ctx, q, id, SessionCompleted, aj, gj)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SessionRepo) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	const q = `
select id, user_id, device_category, image_hashes, symptoms_text, status,
       coalesce(ai_analysis,'null'), coalesce(repair_guidance,'null'),
       created_at, completed_at
from diagnostic_sessions where id=$1`
	var (
		s      Session
		hashes []byte
	)
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.UserID, &s.DeviceCategory, &hashes, &s.SymptomsText, &s.Status,
		&s.AIAnalysis, &s.RepairGuidance, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(hashes, &s.ImageHashes); err != nil {
		s.ImageHashes = nil
	}
	return &s, nil
}

// PurgeOlderThan removes old sessions so the table does not grow without
// bound.
func (r *SessionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.ExecContext(ctx, `delete from diagnostic_sessions where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
