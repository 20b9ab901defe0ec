package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-app/inkwell/internal/model"
	"github.com/inkwell-app/inkwell/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
//
// Note the deliberate gaps: users.email carries a plain (non-unique)
// index, and comments.post_id has no foreign key, so comments may
// reference posts that never existed or were deleted.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);

CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	post_id TEXT NOT NULL,
	content TEXT NOT NULL,
	author_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
`,
	// Future migrations go here:
	// Migration 2: `ALTER TABLE ...`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, is_admin, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, user.ID, user.Username, user.Email, user.PasswordHash, boolToInt(user.IsAdmin), user.CreatedAt.Unix())
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, email, password_hash, is_admin, created_at
FROM users
WHERE id = ?
`, id)
	return scanUser(row)
}

// FindUserByEmail returns the oldest user with the given email. Emails
// are not unique in the schema, matching the registration behavior.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, email, password_hash, is_admin, created_at
FROM users
WHERE email = ?
ORDER BY created_at ASC
LIMIT 1
`, email)
	return scanUser(row)
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (string, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO posts (id, title, content, author_id, created_at)
VALUES (?, ?, ?, ?, ?)
`, post.ID, post.Title, post.Content, post.AuthorID, post.CreatedAt.Unix())
	if err != nil {
		return "", err
	}
	return post.ID, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT p.id, p.title, p.content, p.author_id, p.created_at, u.username
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
WHERE p.id = ?
LIMIT 1
`, id)
	return scanPost(row)
}

func (s *Store) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.title, p.content, p.author_id, p.created_at, u.username
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
ORDER BY p.created_at DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *Store) UpdatePost(ctx context.Context, id, title, content string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE posts SET title = ?, content = ? WHERE id = ?
`, title, content, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePost removes the post row only. Comments referencing the post
// are left in place.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) (string, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO comments (id, post_id, content, author_id, created_at)
VALUES (?, ?, ?, ?, ?)
`, comment.ID, comment.PostID, comment.Content, comment.AuthorID, comment.CreatedAt.Unix())
	if err != nil {
		return "", err
	}
	return comment.ID, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.post_id, c.content, c.author_id, c.created_at, u.username
FROM comments c
LEFT JOIN users u ON u.id = c.author_id
WHERE c.post_id = ?
ORDER BY c.created_at ASC
`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var created int64
		var author sql.NullString
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorID, &created, &author); err != nil {
			return nil, err
		}
		if author.Valid {
			c.Author = author.String
		}
		c.CreatedAt = time.Unix(created, 0)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) GetSiteStats(ctx context.Context) (model.SiteStats, error) {
	var stats model.SiteStats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`)
	if err := row.Scan(&stats.Users); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`)
	if err := row.Scan(&stats.Posts); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`)
	if err := row.Scan(&stats.Comments); err != nil {
		return stats, err
	}
	return stats, nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var isAdmin int
	var created int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &isAdmin, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	u.IsAdmin = isAdmin == 1
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func scanPost(scanner interface{ Scan(dest ...any) error }) (model.Post, error) {
	var p model.Post
	var created int64
	var author sql.NullString
	if err := scanner.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &created, &author); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	if author.Valid {
		p.Author = author.String
	}
	p.CreatedAt = time.Unix(created, 0)
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
