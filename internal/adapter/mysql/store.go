package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/pedif/Quokka/internal/domain"
)

// Store implements ports.Store on a MySQL actions table. Open actions are
// stored with end_ms = 0; the mapping back to domain.End happens here so the
// sentinel never leaks into the engine.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	// Conservative pool defaults; can be adjusted via env later.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

const columns = "id, title, start_ms, end_ms, feeling, comment"

// ActionsInRange returns actions starting in [start, end), newest first.
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

// OpenAction returns the single open action starting at or after since,
// nil when none exists.
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

// Close closes the underlying DB. Not part of ports.Store to keep it minimal.
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
