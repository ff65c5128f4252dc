package config

import "os"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port             string
	PostgresDSN      string
	MongoURI         string
	MongoDB          string
	RedisAddr        string
	RedisPassword    string
	MinioEndpoint    string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioBucket      string
	MinioUseSSL      bool
	AgentsServiceURL string
	IndexServiceURL  string
	MaxUploadBytes   int64
}

func Load() *Config {
	return &Config{
		Port:             getenv("PORT", "8080"),
		PostgresDSN:      getenv("POSTGRES_DSN", ""),
		MongoURI:         getenv("MONGO_URI", ""),
		MongoDB:          getenv("MONGO_DB", "procurement_agent"),
		RedisAddr:        getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:    getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:      getenv("MINIO_BUCKET", "compliance-docs"),
		MinioUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		AgentsServiceURL: getenv("AGENTS_SERVICE_URL", "http://agents-service:8000"),
		IndexServiceURL:  getenv("INDEX_SERVICE_URL", "http://index-service:8001"),
		MaxUploadBytes:   20 << 20, // matches the 20MB form limit on uploads
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
