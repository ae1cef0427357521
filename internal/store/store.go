// Package store persists evaluation snapshots.
//
// A snapshot is the full state of one evaluation: its responses, the
// scores computed from them and any custom alerts. Two drivers are
// supported: an embedded SQLite file (the default) and a MySQL server.
// JSON payloads are stored as text columns in both.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/scoring"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when no snapshot has the requested id.
var ErrNotFound = errors.New("store: evaluation not found")

// Driver names.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ─── Types ───────────────────────────────────────────────────────────────────

// Record is one persisted evaluation.
type Record struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ModelID      string            `json:"modelId"`
	Locale       string            `json:"locale"`
	Responses    scoring.Responses `json:"responses"`
	Scores       scoring.Scores    `json:"scores"`
	CustomAlerts []alerts.Alert    `json:"customAlerts"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Summary is the listing view of a Record.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ModelID   string    `json:"modelId"`
	Overall   int       `json:"overall"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config selects and parameterizes the driver.
type Config struct {
	Driver string `yaml:"driver"`

	// sqlite
	DataDir string `yaml:"data_dir"`

	// mysql
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DefaultConfig returns a SQLite store under ~/.planbarometro.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Driver:  DriverSQLite,
		DataDir: filepath.Join(home, ".planbarometro"),
		Host:    "127.0.0.1",
		Port:    "3306",
	}
}

// MySQLDSN builds the driver DSN for cfg.
func MySQLDSN(cfg Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.Local
	return mc.FormatDSN()
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is a snapshot repository backed by database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and creates the schema.
func Open(cfg Config) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case "", DriverSQLite:
		db, err = openSQLite(cfg)
		cfg.Driver = DriverSQLite
	case DriverMySQL:
		db, err = openMySQL(cfg)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func openSQLite(cfg Config) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB(DriverSQLite, filepath.Join(cfg.DataDir, "planbarometro.db"))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	return db, nil
}

func openMySQL(cfg Config) (*sql.DB, error) {
	db, err := openDB(DriverMySQL, MySQLDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}
	return db, nil
}

// Driver returns the active driver name.
func (s *Store) Driver() string { return s.driver }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS evaluations (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			model_id      TEXT NOT NULL,
			locale        TEXT NOT NULL,
			responses     TEXT NOT NULL,
			scores        TEXT NOT NULL,
			custom_alerts TEXT NOT NULL,
			overall       INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		)`
	if s.driver == DriverMySQL {
		schema = `
		CREATE TABLE IF NOT EXISTS evaluations (
			id            VARCHAR(64)  NOT NULL,
			name          VARCHAR(255) NOT NULL,
			model_id      VARCHAR(64)  NOT NULL,
			locale        VARCHAR(16)  NOT NULL,
			responses     LONGTEXT     NOT NULL,
			scores        LONGTEXT     NOT NULL,
			custom_alerts LONGTEXT     NOT NULL,
			overall       INT          NOT NULL DEFAULT 0,
			created_at    VARCHAR(40)  NOT NULL,
			updated_at    VARCHAR(40)  NOT NULL,
			PRIMARY KEY (id),
			INDEX idx_evaluations_updated (updated_at)
		)`
	}
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if s.driver == DriverSQLite {
		_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_evaluations_updated ON evaluations(updated_at)`)
		return err
	}
	return nil
}

// ─── Snapshots ───────────────────────────────────────────────────────────────

// Save inserts or replaces the snapshot with rec.ID. CreatedAt is kept
// from the first insert.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("store: save: record id is required")
	}

	responses, err := json.Marshal(nonNilResponses(rec.Responses))
	if err != nil {
		return fmt.Errorf("store: encode responses: %w", err)
	}
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("store: encode scores: %w", err)
	}
	custom := rec.CustomAlerts
	if custom == nil {
		custom = []alerts.Alert{}
	}
	customJSON, err := json.Marshal(custom)
	if err != nil {
		return fmt.Errorf("store: encode custom alerts: %w", err)
	}

	query := `
		INSERT INTO evaluations
			(id, name, model_id, locale, responses, scores, custom_alerts, overall, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			model_id = excluded.model_id,
			locale = excluded.locale,
			responses = excluded.responses,
			scores = excluded.scores,
			custom_alerts = excluded.custom_alerts,
			overall = excluded.overall,
			updated_at = excluded.updated_at`
	if s.driver == DriverMySQL {
		query = `
		INSERT INTO evaluations
			(id, name, model_id, locale, responses, scores, custom_alerts, overall, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			model_id = VALUES(model_id),
			locale = VALUES(locale),
			responses = VALUES(responses),
			scores = VALUES(scores),
			custom_alerts = VALUES(custom_alerts),
			overall = VALUES(overall),
			updated_at = VALUES(updated_at)`
	}

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.ModelID, rec.Locale,
		string(responses), string(scores), string(customJSON),
		rec.Scores.Overall,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads the snapshot with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, model_id, locale, responses, scores, custom_alerts, created_at, updated_at
		FROM evaluations WHERE id = ?`, id)

	var (
		rec                       Record
		responses, scores, custom string
		created, updated          string
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.ModelID, &rec.Locale,
		&responses, &scores, &custom, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(responses), &rec.Responses); err != nil {
		return nil, fmt.Errorf("store: decode responses of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(scores), &rec.Scores); err != nil {
		return nil, fmt.Errorf("store: decode scores of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(custom), &rec.CustomAlerts); err != nil {
		return nil, fmt.Errorf("store: decode custom alerts of %s: %w", id, err)
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("store: decode created_at of %s: %w", id, err)
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("store: decode updated_at of %s: %w", id, err)
	}
	return &rec, nil
}

// List returns the most recently updated snapshots first. A limit of
// zero or less means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT id, name, model_id, overall, updated_at FROM evaluations ORDER BY updated_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.ModelID, &sum.Overall, &updated); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("store: list decode updated_at: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func nonNilResponses(r scoring.Responses) scoring.Responses {
	if r == nil {
		return scoring.Responses{}
	}
	return r
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
