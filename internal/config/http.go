package config

const (
	HCType        = "Content-Type"
	HAccept       = "Accept"
	HUserAgent    = "User-Agent"
	HCacheControl = "Cache-Control"

	CTypeJSON = "application/json"
	CTypeHTML = "text/html; charset=utf-8"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
	HTTPErrPostNotFound     = "Post not found"
	HTTPErrInvalidBody      = "Invalid request body"
	HTTPErrAuthorContent    = "author and content are required"
)
