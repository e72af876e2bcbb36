// Command migrate-times rewrites the timestamps of the sqlite post store in one canonical UTC
// format so that ordering by created_at matches creation order.
package main

import (
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/db"
	"github.com/debemdeboas/the-feed/internal/logger"
	"github.com/debemdeboas/the-feed/internal/model"
)

type postTime struct {
	ID         string
	CreatedAt  sql.NullString
	ModifiedAt sql.NullString
}

// updateTimestamp updates a single timestamp in the database.
func updateTimestamp(database db.Db, id, column string, ts model.Timestamp) error {
	_, err := database.Exec(fmt.Sprintf("UPDATE posts SET %s = ? WHERE id = ?", column), ts.UTC(), id)
	return err
}

func migrate(database db.Db) (updated, failed int, err error) {
	// Cast to TEXT so the driver hands back the stored value instead of its own parse of it.
	rows, err := database.Query("SELECT id, CAST(created_at AS TEXT), CAST(modified_at AS TEXT) FROM posts")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query posts: %w", err)
	}

	var posts []postTime
	for rows.Next() {
		var p postTime
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.ModifiedAt); err != nil {
			log.Warn().Err(err).Msg("Failed to scan row")
			continue
		}
		posts = append(posts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Info().Int("posts", len(posts)).Msg("Found posts to process")

	for _, p := range posts {
		for column, value := range map[string]sql.NullString{"created_at": p.CreatedAt, "modified_at": p.ModifiedAt} {
			if !value.Valid {
				continue
			}

			ts, err := model.ParseTimestamp(value.String)
			if err != nil {
				log.Warn().Err(err).Str("post_id", p.ID).Str("column", column).Msg("Could not parse timestamp")
				failed++
				continue
			}

			if err := updateTimestamp(database, p.ID, column, ts); err != nil {
				log.Error().Err(err).Str("post_id", p.ID).Str("column", column).Msg("Failed to update timestamp")
				failed++
				continue
			}
			updated++
		}
	}

	return updated, failed, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	l := logger.New(cfg.Logging.Level)
	log.Logger = l
	db.SetLogger(l.With().Str("component", "db").Logger())

	log.Info().Str("path", cfg.Store.SQLitePath).Msg("Starting timestamp migration")

	database := db.NewSQLite(cfg.Store.SQLitePath)
	if err := database.InitDB(); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}
	defer database.Close()

	updated, failed, err := migrate(database)
	if err != nil {
		log.Fatal().Err(err).Msg("Timestamp migration failed")
	}

	log.Info().Int("updated", updated).Int("failed", failed).Msg("Timestamp migration complete")
}
