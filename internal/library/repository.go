package library

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateMedia(ctx context.Context, m *Media) error
	GetMedia(ctx context.Context, id string) (*Media, error)
	GetMediaByPath(ctx context.Context, path string) (*Media, error)
	ListMedia(ctx context.Context) ([]*Media, error)
	DeleteMedia(ctx context.Context, id string) error
	CountMedia(ctx context.Context) (int, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const mediaColumns = `id, path, filename, size, duration, width, height, frame_rate, created_at`

func (r *SQLiteRepository) CreateMedia(ctx context.Context, m *Media) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Path, m.Filename, m.Size, m.Duration, m.Width, m.Height, m.FrameRate, m.CreatedAt.Format(time.RFC3339))
	return err
}

// GetMedia returns nil, nil when no row matches.
func (r *SQLiteRepository) GetMedia(ctx context.Context, id string) (*Media, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

func (r *SQLiteRepository) GetMediaByPath(ctx context.Context, path string) (*Media, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE path = ?`, path)
	return scanMedia(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(row scanner) (*Media, error) {
	var m Media
	var createdAt string
	err := row.Scan(&m.ID, &m.Path, &m.Filename, &m.Size, &m.Duration, &m.Width, &m.Height, &m.FrameRate, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &m, nil
}

func (r *SQLiteRepository) ListMedia(ctx context.Context) ([]*Media, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (r *SQLiteRepository) DeleteMedia(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountMedia(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
