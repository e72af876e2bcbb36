package store

import (
	"context"
	"slices"
	"sync"

	"github.com/debemdeboas/the-feed/internal/model"
)

// MemoryRepository keeps posts in insertion order for the lifetime of the process.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts []model.Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts: make([]model.Post, 0),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.posts), nil
}

func (r *MemoryRepository) indexOf(id model.PostID) int {
	return slices.IndexFunc(r.posts, func(p model.Post) bool { return p.ID == id })
}

func (r *MemoryRepository) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrPostNotFound
	}
	post := r.posts[i]
	return &post, nil
}

func (r *MemoryRepository) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := model.Post{
		ID:          newPostID(),
		Author:      in.Author,
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		CreatedDate: model.NewTimestamp(now()),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, post)
	return &post, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id model.PostID, in model.PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrPostNotFound
	}

	r.posts[i].Author = in.Author
	r.posts[i].Content = in.Content
	r.posts[i].ImageURL = in.ImageURL
	post := r.posts[i]
	return &post, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id model.PostID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrPostNotFound
	}
	r.posts = slices.Delete(r.posts, i, i+1)
	return nil
}
