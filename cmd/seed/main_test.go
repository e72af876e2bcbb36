package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/debemdeboas/the-feed/internal/model"
)

type fakeCreator struct {
	inputs []model.PostInput
	fail   map[string]bool
}

func (f *fakeCreator) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	if f.fail[in.Author] {
		return nil, errors.New("boom")
	}
	f.inputs = append(f.inputs, in)
	return &model.Post{ID: model.PostID(strconv.Itoa(len(f.inputs))), Author: in.Author, Content: in.Content}, nil
}

func TestReadPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.yaml")
	data := `
- author: Alice
  content: Hello
- author: Bob
  content: With a picture
  imageUrl: http://img/1.png
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	posts, err := readPosts(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if posts[1].ImageURL != "http://img/1.png" {
		t.Errorf("Expected image URL, got %q", posts[1].ImageURL)
	}

	if _, err := readPosts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSeed(t *testing.T) {
	c := &fakeCreator{fail: map[string]bool{"Mallory": true}}
	posts := []seedPost{
		{Author: "Alice", Content: "Hello"},
		{Author: "", Content: "No author"},
		{Author: "Mallory", Content: "Fails"},
		{Author: "Bob", Content: "Bye"},
	}

	created, failed := seed(context.Background(), c, posts)
	if created != 2 || failed != 2 {
		t.Errorf("Expected 2 created and 2 failed, got %d and %d", created, failed)
	}
	if len(c.inputs) != 2 || c.inputs[0].Author != "Alice" || c.inputs[1].Author != "Bob" {
		t.Errorf("Unexpected inputs %+v", c.inputs)
	}
}
