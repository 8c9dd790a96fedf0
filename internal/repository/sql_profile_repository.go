package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iep-planner-api/internal/models"
)

const profileSchema = `CREATE TABLE IF NOT EXISTS student_profiles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    age INTEGER NOT NULL DEFAULT 0,
    grade TEXT NOT NULL DEFAULT '',
    diagnosis TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

const profileNameIndex = `CREATE INDEX IF NOT EXISTS idx_student_profiles_name ON student_profiles (name)`

const profileColumns = `id, name, age, grade, diagnosis, content, created_at, updated_at`

// profileBlob stores the whole aggregate as JSON text next to the searchable columns.
type profileBlob struct {
	models.StudentProfile
}

// Value implements driver.Valuer.
func (b profileBlob) Value() (driver.Value, error) {
	raw, err := json.Marshal(b.StudentProfile)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (b *profileBlob) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		b.StudentProfile = models.StudentProfile{}
		return nil
	case []byte:
		return json.Unmarshal(v, &b.StudentProfile)
	case string:
		return json.Unmarshal([]byte(v), &b.StudentProfile)
	default:
		return fmt.Errorf("unsupported profile content type %T", value)
	}
}

type profileRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Age       int         `db:"age"`
	Grade     string      `db:"grade"`
	Diagnosis string      `db:"diagnosis"`
	Content   profileBlob `db:"content"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row profileRow) profile() models.StudentProfile {
	p := row.Content.StudentProfile
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt.UTC()
	p.UpdatedAt = row.UpdatedAt.UTC()
	return p
}

// SQLProfileRepository stores profiles in Postgres or SQLite through sqlx.
type SQLProfileRepository struct {
	db *sqlx.DB
}

// NewSQLProfileRepository constructs the repository.
func NewSQLProfileRepository(db *sqlx.DB) *SQLProfileRepository {
	return &SQLProfileRepository{db: db}
}

// Backend names the store.
func (r *SQLProfileRepository) Backend() string { return "sql" }

// EnsureSchema creates the profile table when missing.
func (r *SQLProfileRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{profileSchema, profileNameIndex} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure profile schema: %w", err)
		}
	}
	return nil
}

// Get fetches a profile by id.
func (r *SQLProfileRepository) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	query := r.db.Rebind(`SELECT ` + profileColumns + ` FROM student_profiles WHERE id = ?`)
	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profileNotFound()
		}
		return nil, fmt.Errorf("get student profile: %w", err)
	}
	p := row.profile()
	return &p, nil
}

// Put inserts or replaces the profile. The original created_at is kept on conflict.
func (r *SQLProfileRepository) Put(ctx context.Context, profile *models.StudentProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("sql store: profile id is required")
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	const query = `INSERT INTO student_profiles (id, name, age, grade, diagnosis, content, created_at, updated_at)
VALUES (:id, :name, :age, :grade, :diagnosis, :content, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET name = EXCLUDED.name, age = EXCLUDED.age, grade = EXCLUDED.grade,
              diagnosis = EXCLUDED.diagnosis, content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`
	row := profileRow{
		ID:        profile.ID,
		Name:      profile.Name,
		Age:       int(profile.Age),
		Grade:     profile.Grade,
		Diagnosis: profile.Diagnosis,
		Content:   profileBlob{StudentProfile: *profile},
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert student profile: %w", err)
	}
	return nil
}

// Delete removes the profile; unknown ids are not an error.
func (r *SQLProfileRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM student_profiles WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student profile: %w", err)
	}
	return nil
}

// List returns every profile, most recently updated first.
func (r *SQLProfileRepository) List(ctx context.Context) ([]models.StudentProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM student_profiles ORDER BY updated_at DESC, id ASC`
	return r.selectProfiles(ctx, query)
}

// Search matches a case-insensitive substring of the name.
func (r *SQLProfileRepository) Search(ctx context.Context, name string) ([]models.StudentProfile, error) {
	query := r.db.Rebind(`SELECT ` + profileColumns + ` FROM student_profiles WHERE LOWER(name) LIKE ? ORDER BY updated_at DESC, id ASC`)
	return r.selectProfiles(ctx, query, "%"+strings.ToLower(strings.TrimSpace(name))+"%")
}

func (r *SQLProfileRepository) selectProfiles(ctx context.Context, query string, args ...interface{}) ([]models.StudentProfile, error) {
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list student profiles: %w", err)
	}
	out := make([]models.StudentProfile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.profile())
	}
	return out, nil
}
