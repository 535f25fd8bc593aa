package wizard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGStore persists wizard state in Postgres, one row per (user, draft).
// Last write wins on repeated saves.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Get(ctx context.Context, userID, resumeID string) (State, error) {
	const query = `
SELECT completed_steps, document_generated, payment_completed, sidebar_visible
FROM wizard_states
WHERE user_id = $1 AND resume_id = $2
LIMIT 1`
	var stepsJSON []byte
	state := NewState(userID, resumeID)
	err := s.DB.QueryRowContext(ctx, query, userID, resumeID).Scan(
		&stepsJSON,
		&state.DocumentGenerated,
		&state.PaymentCompleted,
		&state.SidebarVisible,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, ErrNotFound
		}
		return State{}, err
	}
	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &state.CompletedSteps); err != nil {
			return State{}, err
		}
	}
	return state, nil
}

func (s *PGStore) Put(ctx context.Context, state State) error {
	stepsJSON, err := json.Marshal(state.CompletedSteps)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO wizard_states (user_id, resume_id, completed_steps, document_generated, payment_completed, sidebar_visible, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (user_id, resume_id) DO UPDATE SET
  completed_steps = EXCLUDED.completed_steps,
  document_generated = EXCLUDED.document_generated,
  payment_completed = EXCLUDED.payment_completed,
  sidebar_visible = EXCLUDED.sidebar_visible,
  updated_at = now()`
	_, err = s.DB.ExecContext(ctx, query,
		state.UserID,
		state.ResumeID,
		stepsJSON,
		state.DocumentGenerated,
		state.PaymentCompleted,
		state.SidebarVisible,
	)
	return err
}

func (s *PGStore) Delete(ctx context.Context, userID, resumeID string) error {
	const query = `DELETE FROM wizard_states WHERE user_id = $1 AND resume_id = $2`
	_, err := s.DB.ExecContext(ctx, query, userID, resumeID)
	return err
}
