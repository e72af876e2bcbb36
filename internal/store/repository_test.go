package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/debemdeboas/the-feed/internal/db"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/util/compression"
)

// fixedClock makes now return strictly increasing times.
func fixedClock(t *testing.T) {
	t.Helper()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	orig := now
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	t.Cleanup(func() { now = orig })
}

func newSQLiteRepository(t *testing.T, c compression.Compressor) *DBRepository {
	t.Helper()

	sqlite := db.NewSQLite(db.MemoryPath)
	if err := sqlite.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return NewDBRepository(sqlite, c)
}

func repositories(t *testing.T) map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"sqlite zstd": func(t *testing.T) Repository {
			return newSQLiteRepository(t, compression.ZstdCompressor{})
		},
		"sqlite gzip": func(t *testing.T) Repository {
			return newSQLiteRepository(t, compression.GzipCompressor{})
		},
		"sqlite none": func(t *testing.T) Repository {
			return newSQLiteRepository(t, compression.NoneCompressor{})
		},
		"s3": func(t *testing.T) Repository {
			return newS3Repository(newFakeS3(), "posts", "posts/")
		},
	}
}

func TestRepositories(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			fixedClock(t)
			ctx := context.Background()
			repo := newRepo(t)

			t.Run("empty list", func(t *testing.T) {
				posts, err := repo.List(ctx)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if len(posts) != 0 {
					t.Errorf("Expected no posts, got %d", len(posts))
				}
			})

			var first, second *model.Post

			t.Run("create", func(t *testing.T) {
				var err error
				first, err = repo.Create(ctx, model.PostInput{Author: "Alice", Content: "Hello **world**"})
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				second, err = repo.Create(ctx, model.PostInput{Author: "Bob", Content: "Second", ImageURL: "http://img/b.png"})
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}

				if first.ID == "" || first.ID == second.ID {
					t.Errorf("Expected distinct ids, got %q and %q", first.ID, second.ID)
				}
				if first.CreatedDate.IsZero() {
					t.Error("Expected created date to be set")
				}
			})

			t.Run("list is oldest first", func(t *testing.T) {
				posts, err := repo.List(ctx)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if len(posts) != 2 {
					t.Fatalf("Expected 2 posts, got %d", len(posts))
				}
				if posts[0].ID != first.ID || posts[1].ID != second.ID {
					t.Errorf("Unexpected order: %q, %q", posts[0].ID, posts[1].ID)
				}
				if posts[0].Content != "Hello **world**" || posts[1].ImageURL != "http://img/b.png" {
					t.Errorf("Unexpected content: %+v", posts)
				}
				if !posts[0].CreatedDate.Equal(first.CreatedDate.Time) {
					t.Errorf("Expected created date %v, got %v", first.CreatedDate, posts[0].CreatedDate)
				}
			})

			t.Run("get", func(t *testing.T) {
				post, err := repo.Get(ctx, second.ID)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if post.Author != "Bob" {
					t.Errorf("Expected author Bob, got %q", post.Author)
				}

				if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrPostNotFound) {
					t.Errorf("Expected ErrPostNotFound, got %v", err)
				}
			})

			t.Run("update keeps created date and position", func(t *testing.T) {
				post, err := repo.Update(ctx, first.ID, model.PostInput{Author: "Alice", Content: "Edited"})
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if post.Content != "Edited" {
					t.Errorf("Expected updated content, got %q", post.Content)
				}
				if !post.CreatedDate.Equal(first.CreatedDate.Time) {
					t.Errorf("Expected created date to be kept, got %v", post.CreatedDate)
				}

				posts, _ := repo.List(ctx)
				if posts[0].ID != first.ID {
					t.Errorf("Expected updated post to keep its position")
				}
			})

			t.Run("update unknown", func(t *testing.T) {
				_, err := repo.Update(ctx, "missing", model.PostInput{Author: "A", Content: "B"})
				if !errors.Is(err, ErrPostNotFound) {
					t.Errorf("Expected ErrPostNotFound, got %v", err)
				}
			})

			t.Run("invalid input", func(t *testing.T) {
				inputs := []model.PostInput{
					{Author: "", Content: "x"},
					{Author: "x", Content: "   "},
				}
				for _, in := range inputs {
					if _, err := repo.Create(ctx, in); !errors.Is(err, ErrInvalidPost) {
						t.Errorf("Create(%+v): expected ErrInvalidPost, got %v", in, err)
					}
					if _, err := repo.Update(ctx, first.ID, in); !errors.Is(err, ErrInvalidPost) {
						t.Errorf("Update(%+v): expected ErrInvalidPost, got %v", in, err)
					}
				}
			})

			t.Run("delete", func(t *testing.T) {
				if err := repo.Delete(ctx, first.ID); err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if err := repo.Delete(ctx, first.ID); !errors.Is(err, ErrPostNotFound) {
					t.Errorf("Expected ErrPostNotFound on second delete, got %v", err)
				}

				posts, _ := repo.List(ctx)
				if len(posts) != 1 || posts[0].ID != second.ID {
					t.Errorf("Expected only %q to remain, got %+v", second.ID, posts)
				}
			})
		})
	}
}

func TestDBRepositoryCompressesContent(t *testing.T) {
	fixedClock(t)
	repo := newSQLiteRepository(t, compression.ZstdCompressor{})

	post, err := repo.Create(context.Background(), model.PostInput{Author: "Alice", Content: "compressed content"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var raw []byte
	var hash string
	if err := repo.db.QueryRow(`SELECT content, content_hash FROM posts WHERE id = ?`, post.ID).Scan(&raw, &hash); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if string(raw) == "compressed content" {
		t.Error("Expected content to be stored compressed")
	}
	if hash == "" {
		t.Error("Expected content hash to be stored")
	}
}

func TestNewDBRepositoryDefaultCompressor(t *testing.T) {
	repo := NewDBRepository(db.NewSQLite(db.MemoryPath), nil)
	if _, ok := repo.compressor.(compression.ZstdCompressor); !ok {
		t.Errorf("Expected zstd by default, got %T", repo.compressor)
	}
}
