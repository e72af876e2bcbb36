package config

const (
	PostsPath = "/posts"

	DefaultConfigPath = "config.yaml"

	EnvConfigPath        = "FEED_CONFIG"
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendS3     = "s3"

	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
	CompressionNone = "none"
)
