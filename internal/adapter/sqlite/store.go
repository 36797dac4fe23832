package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pedif/Quokka/internal/domain"
)

//go:embed schema.sql
var schema string

// Store implements ports.Store on a local SQLite file. This is the default
// backend for single-user use; the schema mirrors the MySQL adapter's.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (and creates if needed) the database at path. An empty path
// falls back to the default data file under the user's data directory.
func Open(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// DefaultPath returns the database file under XDG_DATA_HOME, falling back
// to ~/.local/share.
func DefaultPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	appDir := filepath.Join(dataDir, "quokka")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "quokka.db"), nil
}

const columns = "id, title, start_ms, end_ms, feeling, comment"

func (s *Store) ActionsInRange(ctx context.Context, start, end int64) ([]domain.Action, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM actions WHERE start_ms >= ? AND start_ms < ? ORDER BY start_ms DESC",
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (s *Store) OpenAction(ctx context.Context, since int64) (*domain.Action, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM actions WHERE end_ms = 0 AND start_ms >= ? ORDER BY start_ms DESC LIMIT 1",
		since)
	a, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Insert(ctx context.Context, a domain.Action) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO actions (title, start_ms, end_ms, feeling, comment) VALUES (?, ?, ?, ?, ?)",
		a.Title, a.Start, a.End.Millis(), a.Feeling.String(), a.Comment)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.log.Debug("inserted action", slog.Int64("id", id), slog.String("feeling", a.Feeling.String()))
	return id, nil
}

func (s *Store) Update(ctx context.Context, a domain.Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE actions SET title = ?, start_ms = ?, end_ms = ?, feeling = ?, comment = ? WHERE id = ?",
		a.Title, a.Start, a.End.Millis(), a.Feeling.String(), a.Comment, a.ID)
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM actions WHERE id = ?", id)
	return err
}

// Close closes the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(r rowScanner) (domain.Action, error) {
	var (
		a       domain.Action
		endMS   int64
		feeling string
	)
	if err := r.Scan(&a.ID, &a.Title, &a.Start, &endMS, &feeling, &a.Comment); err != nil {
		return domain.Action{}, err
	}
	f, err := domain.ParseFeeling(feeling)
	if err != nil {
		return domain.Action{}, err
	}
	a.Feeling = f
	if endMS != 0 {
		a.End = domain.EndAt(endMS)
	}
	return a, nil
}
