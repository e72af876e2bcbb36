// Package model defines the post and draft types shared by the feed client and the reference
// post store.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var modelLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	modelLogger = l
}

// PostID is the store-assigned identifier of a post. Stores may send it as a JSON string or a
// JSON number; both decode to the same textual form.
type PostID string

func (id *PostID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid post id: %w", err)
		}
		*id = PostID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid post id %s: %w", b, err)
	}
	*id = PostID(n.String())
	return nil
}

type Post struct {
	ID          PostID    `json:"id"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedDate Timestamp `json:"createdDate"`
}

// Initial returns the uppercased first letter of the author, or "?" when there is none.
func (p *Post) Initial() string {
	for _, r := range strings.TrimSpace(p.Author) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// Input returns the writable fields of the post.
func (p *Post) Input() PostInput {
	return PostInput{
		Author:   p.Author,
		Content:  p.Content,
		ImageURL: p.ImageURL,
	}
}

// PostInput is the request body of create and update calls. ImageURL is always serialized.
type PostInput struct {
	Author   string `json:"author" validate:"required"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"imageUrl"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func postValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate reports whether author and content are non-empty once surrounding whitespace is
// trimmed. The input itself is not modified.
func (in PostInput) Validate() error {
	trimmed := PostInput{
		Author:   strings.TrimSpace(in.Author),
		Content:  strings.TrimSpace(in.Content),
		ImageURL: in.ImageURL,
	}
	return postValidator().Struct(trimmed)
}

var timestampLayouts = []string{
	time.RFC3339Nano,                      // 'T' separator with timezone
	"2006-01-02T15:04:05.999999999",       // 'T' separator, no timezone
	"2006-01-02T15:04:05.999999999-0700",  // 'T' separator, offset without colon
	"2006-01-02 15:04:05.999999999-07:00", // Space separator with timezone
	"2006-01-02 15:04:05.999999999",       // Space separator, no timezone
	"2006-01-02",
}

// Timestamp is a creation time as sent by the store. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func ParseTimestamp(s string) (Timestamp, error) {
	var parseErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{Time: t}, nil
		}
		parseErr = err
	}
	return Timestamp{}, fmt.Errorf("error parsing timestamp '%s' with any known format: %w", s, parseErr)
}

// UnmarshalJSON accepts a string in any of the known layouts or a number of epoch
// milliseconds. Anything else decodes to the zero time so one bad date never rejects the
// surrounding post list.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	ts.Time = time.Time{}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	switch v := v.(type) {
	case nil:
	case string:
		if v == "" {
			return nil
		}
		parsed, err := ParseTimestamp(v)
		if err != nil {
			modelLogger.Warn().Err(err).Msg("Ignoring unparseable timestamp")
			return nil
		}
		*ts = parsed
	case float64:
		ts.Time = time.UnixMilli(int64(v)).UTC()
	default:
		modelLogger.Warn().RawJSON("value", b).Msg("Ignoring timestamp of unsupported type")
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}
