package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/model"
)

// s3API is the part of *s3.Client the repository uses.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Repository keeps one JSON object per post under a key prefix.
type S3Repository struct { // implements Repository
	client s3API
	bucket string
	prefix string
}

func NewS3Repository(ctx context.Context, cfg config.S3Config, accessKeyID, accessKeySecret string) (*S3Repository, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing S3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Repository(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Repository(client s3API, bucket, prefix string) *S3Repository {
	return &S3Repository{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (r *S3Repository) key(id model.PostID) string {
	return r.prefix + string(id) + ".json"
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (r *S3Repository) read(ctx context.Context, key string) (*model.Post, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("error reading object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading object %s: %w", key, err)
	}

	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("error decoding object %s: %w", key, err)
	}
	return &post, nil
}

func (r *S3Repository) write(ctx context.Context, post *model.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("error encoding post: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key(post.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(config.CTypeJSON),
	})
	if err != nil {
		return fmt.Errorf("error writing post %s: %w", post.ID, err)
	}
	return nil
}

func (r *S3Repository) List(ctx context.Context) ([]model.Post, error) {
	posts := make([]model.Post, 0)

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing posts: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}

			post, err := r.read(ctx, key)
			if errors.Is(err, ErrPostNotFound) {
				// Deleted between list and read.
				continue
			}
			if err != nil {
				return nil, err
			}
			posts = append(posts, *post)
		}
	}

	slices.SortStableFunc(posts, func(a, b model.Post) int {
		if c := a.CreatedDate.Compare(b.CreatedDate.Time); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})

	return posts, nil
}

func (r *S3Repository) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	return r.read(ctx, r.key(id))
}

func (r *S3Repository) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:          newPostID(),
		Author:      in.Author,
		Content:     in.Content,
		ImageURL:    in.ImageURL,
		CreatedDate: model.NewTimestamp(now()),
	}
	if err := r.write(ctx, post); err != nil {
		return nil, err
	}

	storeLogger.Debug().Str("post_id", string(post.ID)).Str("bucket", r.bucket).Msg("Post saved")
	return post, nil
}

func (r *S3Repository) Update(ctx context.Context, id model.PostID, in model.PostInput) (*model.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Author = in.Author
	post.Content = in.Content
	post.ImageURL = in.ImageURL
	if err := r.write(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *S3Repository) Delete(ctx context.Context, id model.PostID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(id)),
	})
	if err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}
	return nil
}
