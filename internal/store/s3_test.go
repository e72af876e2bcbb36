package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/debemdeboas/the-feed/internal/model"
)

// fakeS3 is an in-memory bucket that pages ListObjectsV2 two keys at a time.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	listErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	start := 0
	if token := aws.ToString(in.ContinuationToken); token != "" {
		start = slices.Index(keys, token)
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3RepositoryLayout(t *testing.T) {
	fixedClock(t)
	fake := newFakeS3()
	repo := newS3Repository(fake, "posts", "feed/")

	post, err := repo.Create(context.Background(), model.PostInput{Author: "Alice", Content: "Hi"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, ok := fake.objects["feed/"+string(post.ID)+".json"]
	if !ok {
		t.Fatalf("Expected object under prefix, have %v", fake.objects)
	}
	if !strings.Contains(string(data), `"author":"Alice"`) {
		t.Errorf("Expected JSON post, got %s", data)
	}
}

func TestS3RepositoryListPages(t *testing.T) {
	fixedClock(t)
	ctx := context.Background()
	fake := newFakeS3()
	repo := newS3Repository(fake, "posts", "posts/")

	var ids []model.PostID
	for i := 0; i < 5; i++ {
		p, err := repo.Create(ctx, model.PostInput{Author: "A", Content: "post"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		ids = append(ids, p.ID)
	}
	fake.objects["posts/README.txt"] = []byte("not a post")
	fake.objects["other/x.json"] = []byte("{}")

	posts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(posts) != len(ids) {
		t.Fatalf("Expected %d posts, got %d", len(ids), len(posts))
	}
	for i, p := range posts {
		if p.ID != ids[i] {
			t.Errorf("posts[%d] = %q, want %q", i, p.ID, ids[i])
		}
	}
}

func TestS3RepositoryErrors(t *testing.T) {
	fake := newFakeS3()
	repo := newS3Repository(fake, "posts", "posts/")

	t.Run("list failure", func(t *testing.T) {
		fake.listErr = errors.New("boom")
		defer func() { fake.listErr = nil }()

		if _, err := repo.List(context.Background()); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("corrupt object", func(t *testing.T) {
		fake.objects["posts/bad.json"] = []byte("{")
		defer delete(fake.objects, "posts/bad.json")

		if _, err := repo.Get(context.Background(), "bad"); err == nil || errors.Is(err, ErrPostNotFound) {
			t.Errorf("Expected decode error, got %v", err)
		}
	})
}
