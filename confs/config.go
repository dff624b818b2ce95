package confs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the prediction server.
type Config struct {
	ListenAddr string

	DBDriver   string // postgres | sqlite
	SQLitePath string

	ModelPath       string
	ModelInputName  string
	ModelOutputName string
	OnnxRuntimeLib  string

	ArtifactDir   string
	SweepInterval time.Duration
	MaxUploadMB   int64
	JWTSecret     string
	JWTTTL        time.Duration
	AuthRequired  bool
}

// LoadConfig loads environment variables from a .env file if present
// and fills in defaults for anything left unset.
func LoadConfig() (*Config, error) {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "2h"))
	if err != nil {
		return nil, err
	}

	sweep, err := time.ParseDuration(getEnv("ARTIFACT_SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, err
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "10"), 10, 64)
	if err != nil {
		return nil, err
	}

	authRequired, err := strconv.ParseBool(getEnv("AUTH_REQUIRED", "false"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", "0.0.0.0:3536"),
		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		SQLitePath:      getEnv("SQLITE_PATH", "lung.db"),
		ModelPath:       getEnv("MODEL_PATH", "models/ct_incep_best_model.onnx"),
		ModelInputName:  getEnv("MODEL_INPUT_NAME", "input"),
		ModelOutputName: getEnv("MODEL_OUTPUT_NAME", "output"),
		OnnxRuntimeLib:  os.Getenv("ONNXRUNTIME_LIB"),
		ArtifactDir:     getEnv("ARTIFACT_DIR", "static/predictions"),
		SweepInterval:   sweep,
		MaxUploadMB:     maxUpload,
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		JWTTTL:          ttl,
		AuthRequired:    authRequired,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
