// Package store is a reference implementation of the remote post store: a JSON API over a
// pluggable post repository.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-feed/internal/model"
)

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("invalid post")
)

// Repository is the post collection behind the store API. List returns posts oldest first.
type Repository interface {
	List(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id model.PostID) (*model.Post, error)
	Create(ctx context.Context, in model.PostInput) (*model.Post, error)
	Update(ctx context.Context, id model.PostID, in model.PostInput) (*model.Post, error)
	Delete(ctx context.Context, id model.PostID) error
}

func validateInput(in model.PostInput) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}
	return nil
}

func newPostID() model.PostID {
	return model.PostID(uuid.New().String())
}

// now is replaced in tests.
var now = func() time.Time {
	return time.Now().UTC()
}
