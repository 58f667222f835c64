package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeStatic AuthType = "static"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

var DefaultAllowedExtensions = []string{
	".bam", ".bai", ".cram", ".crai",
	".vcf", ".vcf.gz", ".tbi",
	".bed", ".bed.gz",
	".gff", ".gff3", ".gtf",
	".fa", ".fasta", ".fai",
	".bw", ".bigwig", ".bigWig",
	".wig", ".bedGraph",
	".json", ".xml",
}

type AuthConfig struct {
	Type          AuthType
	UsersJsonPath string
}

type ServerConfig struct {
	Host               string
	Port               string
	UseSecurityHeaders bool
	ReadHeaderTimeout  time.Duration
}

type DatabaseConfig struct {
	Path string
}

type DataConfig struct {
	Dir               string
	AllowedExtensions []string
}

type RateLimitConfig struct {
	Limit rate.Limit
	Burst int
}

type Config struct {
	BaseUrl       string
	StaticPath    string
	IsDevelopment bool
	Server        *ServerConfig
	Database      *DatabaseConfig
	Data          *DataConfig
	RateLimit     *RateLimitConfig
	Auth          *AuthConfig
}

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory is applied first when present; variables already set in
// the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %v", err)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("DATA_DIR is not set and home directory is unknown: %v", err)
		}
		dataDir = filepath.Join(home, "igv_data")
	}
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DATA_DIR: %v", err)
	}

	allowedExtensions := DefaultAllowedExtensions
	if allowedExtensionsStr := os.Getenv("ALLOWED_EXTENSIONS"); allowedExtensionsStr != "" {
		allowedExtensions = splitList(allowedExtensionsStr)
		if len(allowedExtensions) == 0 {
			return nil, fmt.Errorf("ALLOWED_EXTENSIONS is empty")
		}
	}

	authTypeStr := os.Getenv("AUTH_TYPE")
	if authTypeStr == "" {
		authTypeStr = "none"
	}
	authType := AuthType(authTypeStr)
	if authType != AuthTypeNone && authType != AuthTypeStatic {
		return nil, fmt.Errorf("invalid AUTH_TYPE: %s", authTypeStr)
	}
	staticAuthPath := os.Getenv("STATIC_AUTH_PATH")
	if staticAuthPath == "" {
		staticAuthPath = "users.json"
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "genoserve.db"
	}
	isDevelopment := os.Getenv("ENVIRONMENT") == "development"

	host := os.Getenv("HOST")
	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	if _, err := strconv.ParseUint(serverPort, 10, 16); err != nil {
		return nil, fmt.Errorf("failed to parse PORT: %v", err)
	}

	serverUseSecurityHeadersStr := os.Getenv("USE_SECURITY_HEADERS")
	if serverUseSecurityHeadersStr == "" {
		serverUseSecurityHeadersStr = "false"
	}
	serverUseSecurityHeaders, err := strconv.ParseBool(serverUseSecurityHeadersStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse USE_SECURITY_HEADERS: %v", err)
	}

	readHeaderTimeoutStr := os.Getenv("READ_HEADER_TIMEOUT")
	if readHeaderTimeoutStr == "" {
		readHeaderTimeoutStr = "10s"
	}
	readHeaderTimeout, err := time.ParseDuration(readHeaderTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse READ_HEADER_TIMEOUT: %v", err)
	}

	rateLimitStr := os.Getenv("RATE_LIMIT")
	if rateLimitStr == "" {
		rateLimitStr = "100"
	}
	rateLimit, err := strconv.ParseFloat(rateLimitStr, 64)
	if err != nil || rateLimit < 0 {
		return nil, fmt.Errorf("failed to parse RATE_LIMIT: %q", rateLimitStr)
	}
	rateBurstStr := os.Getenv("RATE_BURST")
	if rateBurstStr == "" {
		rateBurstStr = "200"
	}
	rateBurst, err := strconv.Atoi(rateBurstStr)
	if err != nil || rateBurst < 0 {
		return nil, fmt.Errorf("failed to parse RATE_BURST: %q", rateBurstStr)
	}

	staticPath := os.Getenv("STATIC_PATH")
	if staticPath == "" {
		staticPath = "public"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + serverPort
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := &Config{
		BaseUrl:       baseURL,
		StaticPath:    staticPath,
		IsDevelopment: isDevelopment,
		Server: &ServerConfig{
			Host:               host,
			Port:               serverPort,
			UseSecurityHeaders: serverUseSecurityHeaders,
			ReadHeaderTimeout:  readHeaderTimeout,
		},
		Database: &DatabaseConfig{
			Path: databasePath,
		},
		Data: &DataConfig{
			Dir:               dataDir,
			AllowedExtensions: allowedExtensions,
		},
		RateLimit: &RateLimitConfig{
			Limit: rate.Limit(rateLimit),
			Burst: rateBurst,
		},
		Auth: &AuthConfig{
			Type:          authType,
			UsersJsonPath: staticAuthPath,
		},
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
