// Package feed implements the post sync controller: it owns the post list and the draft form
// and mediates every write against the remote post store, refreshing the list afterwards.
package feed

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-feed/internal/cache"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/notify"
	"github.com/debemdeboas/the-feed/internal/remote"
)

var feedLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	feedLogger = l
}

// DeletePrompt is the question passed to the confirmation gate of DeleteOne.
const DeletePrompt = "Are you sure you want to delete this post?"

// PostStore is the remote collection the controller synchronizes with. List returns posts
// oldest first.
type PostStore interface {
	List(ctx context.Context) ([]model.Post, error)
	Create(ctx context.Context, in model.PostInput) (*model.Post, error)
	Update(ctx context.Context, id model.PostID, in model.PostInput) (*model.Post, error)
	Delete(ctx context.Context, id model.PostID) error
}

var _ PostStore = (*remote.Client)(nil)

// ConfirmFunc is a yes/no gate shown to the user before a destructive operation.
type ConfirmFunc func(prompt string) bool

type Mode int

const (
	Composing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "composing"
}

// Snapshot is an immutable copy of the controller state. Posts are newest first.
type Snapshot struct {
	Posts []model.Post
	Draft model.Draft
	Mode  Mode
}

// Controller methods are the only mutators of the post list and the draft. They may be called
// from any goroutine; no lock is held during a network round trip, so overlapping operations
// each complete independently.
type Controller struct {
	store PostStore

	mu    sync.Mutex
	posts []model.Post
	index *cache.Cache[model.PostID, model.Post]
	draft model.Draft

	// Refresh responses older than the last applied one are dropped.
	refreshSeq uint64
	appliedSeq uint64

	hub *notify.Hub[Snapshot]
}

func NewController(store PostStore) *Controller {
	return &Controller{
		store: store,
		posts: make([]model.Post, 0),
		index: cache.NewCache[model.PostID, model.Post](),
		hub:   notify.NewHub[Snapshot](),
	}
}

// Subscribe returns a subscription that receives a snapshot after every completed mutating
// operation.
func (c *Controller) Subscribe() *notify.Subscription[Snapshot] {
	return c.hub.Subscribe()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	mode := Composing
	if c.draft.Editing() {
		mode = Editing
	}
	return Snapshot{
		Posts: slices.Clone(c.posts),
		Draft: c.draft,
		Mode:  mode,
	}
}

func (c *Controller) publishLocked() {
	c.hub.Publish(c.snapshotLocked())
}

// Post looks up a post of the current list by id.
func (c *Controller) Post(id model.PostID) (model.Post, bool) {
	return c.index.Get(id)
}

// Refresh replaces the post list with the store's collection, newest first. Failures are
// logged and leave the list unchanged.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	posts, err := c.store.List(ctx)
	if err != nil {
		logFailure(remote.OpList, err)
		return
	}

	posts = append(make([]model.Post, 0, len(posts)), posts...)
	slices.Reverse(posts)
	index := make(map[model.PostID]model.Post, len(posts))
	for _, p := range posts {
		index[p.ID] = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.appliedSeq {
		feedLogger.Debug().
			Uint64("seq", seq).
			Uint64("applied_seq", c.appliedSeq).
			Msg("Dropping stale post list")
		return
	}

	c.appliedSeq = seq
	c.posts = posts
	c.index.SetTo(index)

	feedLogger.Debug().Int("count", len(posts)).Msg("Post list refreshed")
	c.publishLocked()
}

// UpdateDraftField sets one draft field and leaves the others untouched.
func (c *Controller) UpdateDraftField(field model.DraftField, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft, ok := c.draft.With(field, value)
	if !ok {
		feedLogger.Warn().Str("field", string(field)).Msg("Ignoring unknown draft field")
		return
	}

	c.draft = draft
	c.publishLocked()
}

// Submit sends the draft as a new post, or as a replacement of the post being edited. A draft
// whose author or content is blank is not sent. On success the draft is cleared and the list
// refreshed; on failure the draft is kept so the user can try again.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	draft := c.draft
	c.mu.Unlock()

	in := draft.Input()
	if err := in.Validate(); err != nil {
		feedLogger.Debug().Err(err).Msg("Draft incomplete, not submitting")
		return
	}

	var err error
	op := remote.OpCreate
	if draft.Editing() {
		op = remote.OpUpdate
		_, err = c.store.Update(ctx, draft.EditingID, in)
	} else {
		_, err = c.store.Create(ctx, in)
	}
	if err != nil {
		logFailure(op, err)
		return
	}

	feedLogger.Info().
		Str("op", op).
		Str("post_id", string(draft.EditingID)).
		Str("author", draft.Author).
		Msg("Post submitted")

	c.mu.Lock()
	c.draft = model.Draft{}
	c.publishLocked()
	c.mu.Unlock()

	c.Refresh(ctx)
}

// BeginEdit loads post into the draft and switches to editing it.
func (c *Controller) BeginEdit(post model.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft = model.DraftFromPost(post)
	c.publishLocked()
}

// BeginEditByID is BeginEdit for a post of the current list. It reports false when id is not
// in the list.
func (c *Controller) BeginEditByID(id model.PostID) bool {
	post, ok := c.index.Get(id)
	if !ok {
		return false
	}
	c.BeginEdit(post)
	return true
}

// CancelEdit discards the draft and returns to composing.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft = model.Draft{}
	c.publishLocked()
}

// DeleteOne removes the post after confirm accepts DeletePrompt, then refreshes the list. A nil
// gate counts as a refusal.
func (c *Controller) DeleteOne(ctx context.Context, id model.PostID, confirm ConfirmFunc) {
	if confirm == nil || !confirm(DeletePrompt) {
		feedLogger.Debug().Str("post_id", string(id)).Msg("Delete not confirmed")
		return
	}

	if err := c.store.Delete(ctx, id); err != nil {
		logFailure(remote.OpDelete, err)
		return
	}

	feedLogger.Info().Str("post_id", string(id)).Msg("Post deleted")
	c.Refresh(ctx)
}

func logFailure(op string, err error) {
	ev := feedLogger.Error().Err(err).Str("op", op)

	var re *remote.RequestError
	if errors.As(err, &re) {
		ev = ev.Str("method", re.Method).Str("url", re.URL)
		if re.StatusCode != 0 {
			ev = ev.Int("status", re.StatusCode)
		}
	}

	ev.Msg("Remote request failed")
}
