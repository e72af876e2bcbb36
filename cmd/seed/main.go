// Command seed creates the posts listed in a YAML file through the remote store API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/logger"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/remote"
)

type seedPost struct {
	Author   string `yaml:"author"`
	Content  string `yaml:"content"`
	ImageURL string `yaml:"imageUrl"`
}

func main() {
	path := flag.String("file", "", "Path to the YAML list of posts")
	baseURL := flag.String("base-url", "", "Store base URL, overrides remote.base_url")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *baseURL != "" {
		cfg.Remote.BaseURL = *baseURL
	}

	l := logger.New(cfg.Logging.Level)
	log.Logger = l
	remote.SetLogger(l.With().Str("component", "remote").Logger())

	posts, err := readPosts(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Error reading posts")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	created, failed := seed(ctx, remote.NewClientFromConfig(cfg.Remote), posts)
	log.Info().Int("created", created).Int("failed", failed).Msg("Seeding complete")
	if failed > 0 {
		os.Exit(1)
	}
}

func readPosts(path string) ([]seedPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var posts []seedPost
	if err := yaml.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

type creator interface {
	Create(ctx context.Context, in model.PostInput) (*model.Post, error)
}

// seed creates posts in order, skipping invalid entries, and reports how many succeeded.
func seed(ctx context.Context, c creator, posts []seedPost) (created, failed int) {
	for i, p := range posts {
		in := model.PostInput{Author: p.Author, Content: p.Content, ImageURL: p.ImageURL}
		if err := in.Validate(); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping invalid post")
			failed++
			continue
		}

		post, err := c.Create(ctx, in)
		if err != nil {
			log.Error().Err(err).Int("index", i).Str("author", p.Author).Msg("Error creating post")
			failed++
			continue
		}

		log.Info().Str("post_id", string(post.ID)).Str("author", post.Author).Msg("Post created")
		created++
	}
	return created, failed
}
