package model

import (
	"fmt"
	"strings"
)

// DraftField names one of the editable draft fields.
type DraftField string

const (
	FieldAuthor   DraftField = "author"
	FieldContent  DraftField = "content"
	FieldImageURL DraftField = "imageUrl"
)

// ParseDraftField maps a field name typed by a user to a DraftField.
func ParseDraftField(name string) (DraftField, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "author":
		return FieldAuthor, nil
	case "content":
		return FieldContent, nil
	case "imageurl", "image_url", "image":
		return FieldImageURL, nil
	}
	return "", fmt.Errorf("unknown draft field %q", name)
}

// Draft is the in-progress form. An empty EditingID means a new post is being composed.
type Draft struct {
	Author   string
	Content  string
	ImageURL string

	EditingID PostID
}

func (d Draft) Editing() bool {
	return d.EditingID != ""
}

func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// Input returns the request body for submitting the draft, as typed.
func (d Draft) Input() PostInput {
	return PostInput{
		Author:   d.Author,
		Content:  d.Content,
		ImageURL: d.ImageURL,
	}
}

// With returns a copy of the draft with field set to value. Unknown fields leave it unchanged.
func (d Draft) With(field DraftField, value string) (Draft, bool) {
	switch field {
	case FieldAuthor:
		d.Author = value
	case FieldContent:
		d.Content = value
	case FieldImageURL:
		d.ImageURL = value
	default:
		return d, false
	}
	return d, true
}

// DraftFromPost returns a draft editing p.
func DraftFromPost(p Post) Draft {
	return Draft{
		Author:    p.Author,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		EditingID: p.ID,
	}
}
