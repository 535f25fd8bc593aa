package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Fragment collections are stored
// as JSONB columns on the drafts row.
type PGRepo struct {
	DB *sql.DB
}

const draftColumns = `
id, user_id, title, status, personal_details, summary, employment, education,
skills, languages, structured_key, artifact_key, artifact_url,
generation_status, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, draft Draft) error {
	const query = `
INSERT INTO resume_drafts (
    id, user_id, title, status, generation_status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $6)`
	status := draft.Status
	if status == "" {
		status = StatusDraft
	}
	genStatus := draft.GenerationStatus
	if genStatus == "" {
		genStatus = GenerationNone
	}
	createdAt := draft.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query,
		draft.ID,
		draft.UserID,
		draft.Title,
		status,
		genStatus,
		createdAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Draft, error) {
	const query = `SELECT` + draftColumns + `
FROM resume_drafts
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, resumeID)
	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, err
	}
	return draft, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Draft, error) {
	const query = `SELECT` + draftColumns + `
FROM resume_drafts
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Draft{}
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, draft Draft) error {
	personalJSON, err := marshalNullable(draft.PersonalDetails)
	if err != nil {
		return err
	}
	employmentJSON, err := marshalNullable(draft.Employment)
	if err != nil {
		return err
	}
	educationJSON, err := marshalNullable(draft.Education)
	if err != nil {
		return err
	}
	skillsJSON, err := marshalNullable(draft.Skills)
	if err != nil {
		return err
	}
	languagesJSON, err := marshalNullable(draft.Languages)
	if err != nil {
		return err
	}

	const query = `
UPDATE resume_drafts SET
  title = $3,
  status = $4,
  personal_details = $5,
  summary = $6,
  employment = $7,
  education = $8,
  skills = $9,
  languages = $10,
  updated_at = now()
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		draft.UserID,
		draft.ID,
		draft.Title,
		draft.Status,
		personalJSON,
		nullableString(draft.Summary),
		employmentJSON,
		educationJSON,
		skillsJSON,
		languagesJSON,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) SetStructuredKey(ctx context.Context, userID, resumeID, key string) error {
	const query = `
UPDATE resume_drafts SET structured_key = $3, updated_at = now()
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, resumeID, key)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) SetArtifact(ctx context.Context, userID, resumeID, artifactKey, artifactURL, status string) error {
	const query = `
UPDATE resume_drafts SET
  artifact_key = $3,
  artifact_url = $4,
  generation_status = $5,
  updated_at = now()
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, resumeID, artifactKey, artifactURL, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, userID, resumeID string) error {
	const query = `DELETE FROM resume_drafts WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, resumeID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (Draft, error) {
	var draft Draft
	var personalJSON, employmentJSON, educationJSON, skillsJSON, languagesJSON []byte
	var summary, structuredKey, artifactKey, artifactURL sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&draft.ID,
		&draft.UserID,
		&draft.Title,
		&draft.Status,
		&personalJSON,
		&summary,
		&employmentJSON,
		&educationJSON,
		&skillsJSON,
		&languagesJSON,
		&structuredKey,
		&artifactKey,
		&artifactURL,
		&draft.GenerationStatus,
		&draft.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Draft{}, err
	}
	draft.Summary = summary.String
	draft.StructuredKey = structuredKey.String
	draft.ArtifactKey = artifactKey.String
	draft.ArtifactURL = artifactURL.String
	if updatedAt.Valid {
		draft.UpdatedAt = updatedAt.Time
	} else {
		draft.UpdatedAt = time.Now().UTC()
	}
	if err := unmarshalInto(personalJSON, &draft.PersonalDetails); err != nil {
		return Draft{}, err
	}
	if err := unmarshalInto(employmentJSON, &draft.Employment); err != nil {
		return Draft{}, err
	}
	if err := unmarshalInto(educationJSON, &draft.Education); err != nil {
		return Draft{}, err
	}
	if err := unmarshalInto(skillsJSON, &draft.Skills); err != nil {
		return Draft{}, err
	}
	if err := unmarshalInto(languagesJSON, &draft.Languages); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case *PersonalDetails:
		if val == nil {
			return nil, nil
		}
	case []EmploymentEntry:
		if len(val) == 0 {
			return nil, nil
		}
	case []EducationEntry:
		if len(val) == 0 {
			return nil, nil
		}
	case []SkillEntry:
		if len(val) == 0 {
			return nil, nil
		}
	case []LanguageEntry:
		if len(val) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func unmarshalInto(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
