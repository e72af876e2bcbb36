// Package routes defines the HTTP route patterns of the post store.
package routes

// Patterns are relative to the store base path.
const (
	Health = "GET /health"

	ListPosts  = "GET /posts"
	CreatePost = "POST /posts"
	GetPost    = "GET /posts/{id}"
	UpdatePost = "PUT /posts/{id}"
	DeletePost = "DELETE /posts/{id}"

	PostIDParam = "id"
)
