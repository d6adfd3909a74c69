package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sevahub/volunteer-shortlister/internal/matching"
	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

// Shortlist rows keep only the head of the job description.
const maxStoredDescription = 500

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DefaultConfig returns default PostgreSQL configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		DBName:  "volunteers",
		SSLMode: "disable",
	}
}

func (c *Config) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Store persists volunteers and shortlists in PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// ShortlistRecord is one persisted shortlist row.
type ShortlistRecord struct {
	VolunteerID    string
	Name           string
	Email          string
	JobDescription string
	Score          float64
	MatchingSkills []string
	Rank           int
	ShortlistedAt  time.Time
}

// Stats summarizes the stored data.
type Stats struct {
	Volunteers   int
	Shortlisted  int
	AverageScore float64
}

// New connects to PostgreSQL and ensures the schema exists.
func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := sql.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.createTables(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS volunteers (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		skills TEXT,
		experience TEXT,
		education TEXT,
		certifications TEXT,
		interests TEXT,
		languages TEXT,
		availability TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS shortlisted_volunteers (
		id SERIAL PRIMARY KEY,
		volunteer_id INTEGER NOT NULL REFERENCES volunteers(id) ON DELETE CASCADE,
		job_description TEXT NOT NULL,
		match_score DOUBLE PRECISION NOT NULL,
		matching_skills TEXT,
		rank INTEGER NOT NULL,
		shortlisted_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_volunteers_email ON volunteers(email);
	CREATE INDEX IF NOT EXISTS idx_shortlisted_volunteer_id ON shortlisted_volunteers(volunteer_id);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// InsertVolunteer stores a volunteer record. Records sharing an email with an
// existing row are skipped, and the existing row id is returned.
func (s *Store) InsertVolunteer(ctx context.Context, v *volunteer.Volunteer) (string, bool, error) {
	email := strings.ToLower(strings.TrimSpace(v.Email))
	if email == "" {
		return "", false, fmt.Errorf("volunteer %q has no email", v.Name)
	}

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM volunteers WHERE email = $1`, email).Scan(&id)
	switch {
	case err == nil:
		return id, false, nil
	case err != sql.ErrNoRows:
		return "", false, fmt.Errorf("checking volunteer by email: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO volunteers (name, email, phone, skills, experience, education, certifications, interests, languages, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		v.Name, email, v.Phone, v.Skills, v.Experience, v.Education,
		v.Certifications, v.Interests, v.Languages, v.Availability,
	).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("inserting volunteer: %w", err)
	}

	return id, true, nil
}

// AllVolunteers loads every stored volunteer ordered by insertion.
func (s *Store) AllVolunteers(ctx context.Context) (*volunteer.Volunteers, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), COALESCE(skills, ''), COALESCE(experience, ''),
			COALESCE(education, ''), COALESCE(certifications, ''), COALESCE(interests, ''),
			COALESCE(languages, ''), COALESCE(availability, '')
		FROM volunteers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying volunteers: %w", err)
	}
	defer rows.Close()

	volunteers := &volunteer.Volunteers{}
	for rows.Next() {
		v := &volunteer.Volunteer{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Skills, &v.Experience,
			&v.Education, &v.Certifications, &v.Interests, &v.Languages, &v.Availability); err != nil {
			return nil, fmt.Errorf("scanning volunteer: %w", err)
		}
		volunteers.Items = append(volunteers.Items, v)
	}

	return volunteers, rows.Err()
}

// SaveShortlist replaces the previous shortlist with the given results.
func (s *Store) SaveShortlist(ctx context.Context, jobDescription string, results []matching.MatchResult) error {
	if len(jobDescription) > maxStoredDescription {
		jobDescription = jobDescription[:maxStoredDescription]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shortlisted_volunteers`); err != nil {
		return fmt.Errorf("clearing previous shortlist: %w", err)
	}

	for _, result := range results {
		if result.Volunteer == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shortlisted_volunteers (volunteer_id, job_description, match_score, matching_skills, rank)
			VALUES ($1, $2, $3, $4, $5)`,
			result.Volunteer.ID, jobDescription, result.Score,
			strings.Join(result.MatchingSkills, ", "), result.Rank,
		)
		if err != nil {
			return fmt.Errorf("inserting shortlist row for volunteer %s: %w", result.Volunteer.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing shortlist: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("shortlist saved", zap.Int("entries", len(results)))
	}

	return nil
}

// Shortlisted returns the stored shortlist ordered by rank.
func (s *Store) Shortlisted(ctx context.Context) ([]ShortlistRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.volunteer_id, v.name, v.email, s.job_description, s.match_score,
			COALESCE(s.matching_skills, ''), s.rank, s.shortlisted_at
		FROM shortlisted_volunteers s
		JOIN volunteers v ON v.id = s.volunteer_id
		ORDER BY s.rank`)
	if err != nil {
		return nil, fmt.Errorf("querying shortlist: %w", err)
	}
	defer rows.Close()

	var records []ShortlistRecord
	for rows.Next() {
		var rec ShortlistRecord
		var skills string
		if err := rows.Scan(&rec.VolunteerID, &rec.Name, &rec.Email, &rec.JobDescription,
			&rec.Score, &skills, &rec.Rank, &rec.ShortlistedAt); err != nil {
			return nil, fmt.Errorf("scanning shortlist row: %w", err)
		}
		if skills != "" {
			rec.MatchingSkills = strings.Split(skills, ", ")
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Stats reports totals over the stored volunteers and the current shortlist.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM volunteers`).Scan(&stats.Volunteers); err != nil {
		return nil, fmt.Errorf("counting volunteers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(match_score), 0) FROM shortlisted_volunteers`,
	).Scan(&stats.Shortlisted, &stats.AverageScore); err != nil {
		return nil, fmt.Errorf("reading shortlist stats: %w", err)
	}

	return stats, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
