package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/debemdeboas/the-feed/internal/db"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/util"
	"github.com/debemdeboas/the-feed/internal/util/compression"
)

const selectPost = `SELECT id, author, content, image_url, created_at FROM posts`

// DBRepository stores posts in SQL with the content compressed.
type DBRepository struct { // implements Repository
	db         db.Db
	compressor compression.Compressor
}

func NewDBRepository(db db.Db, compressor compression.Compressor) *DBRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &DBRepository{
		db:         db,
		compressor: compressor,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DBRepository) scanPost(row rowScanner) (*model.Post, error) {
	var post model.Post
	var compressed []byte
	var createdAt sql.NullString

	if err := row.Scan(&post.ID, &post.Author, &compressed, &post.ImageURL, &createdAt); err != nil {
		return nil, err
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing content of post %s: %w", post.ID, err)
	}
	post.Content = string(content)

	if createdAt.Valid {
		ts, err := model.ParseTimestamp(createdAt.String)
		if err != nil {
			storeLogger.Warn().Err(err).Str("post_id", string(post.ID)).Msg("Unparseable created_at")
		}
		post.CreatedDate = ts
	}

	return &post, nil
}

func (r *DBRepository) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.Query(selectPost + ` ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

func (r *DBRepository) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	post, err := r.scanPost(r.db.QueryRow(selectPost+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading post: %w", err)
	}
	return post, nil
}

func (r *DBRepository) compress(content string) ([]byte, string, error) {
	compressed, err := r.compressor.Compress([]byte(content))
	if err != nil {
		return nil, "", fmt.Errorf("error compressing content: %w", err)
	}
	return compressed, util.ContentHashString(content), nil
}

func (r *DBRepository) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	compressed, hash, err := r.compress(in.Content)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:          newPostID(),
		Author:      in.Author,
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		CreatedDate: model.NewTimestamp(now()),
	}

	res, err := r.db.Exec(
		`INSERT INTO posts (id, author, content, image_url, content_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, post.Author, compressed, post.ImageURL, hash, post.CreatedDate.Time,
	)
	if err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	storeLogger.Debug().Interface("result", res).Str("post_id", string(post.ID)).Msg("Post saved")
	return post, nil
}

func (r *DBRepository) Update(ctx context.Context, id model.PostID, in model.PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	compressed, hash, err := r.compress(in.Content)
	if err != nil {
		return nil, err
	}

	res, err := r.db.Exec(
		`UPDATE posts SET author = ?, content = ?, image_url = ?, content_hash = ?, modified_at = ? WHERE id = ?`,
		in.Author, compressed, in.ImageURL, hash, now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrPostNotFound
	}

	storeLogger.Debug().Str("post_id", string(id)).Str("content_hash", hash).Msg("Post content set")
	return r.Get(ctx, id)
}

func (r *DBRepository) Delete(ctx context.Context, id model.PostID) error {
	res, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPostNotFound
	}
	return nil
}
