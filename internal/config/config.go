package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/openclaip/claip/internal/domain"
)

// Load reads the .env file specified by CLAIP_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CLAIP_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL returns the optional Postgres URL for the claim archive.
// Empty means the archive is disabled.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// CheckpointDir returns where checkpoint file pairs are written.
func CheckpointDir() string {
	dir := os.Getenv("CHECKPOINT_DIR")
	if dir == "" {
		return "checkpoints"
	}
	return dir
}

// ReportsDir returns where metrics reports are written.
func ReportsDir() string {
	dir := os.Getenv("REPORTS_DIR")
	if dir == "" {
		return "reports"
	}
	return dir
}

// CheckpointsEnabled reports whether cadence checkpointing is on.
// Defaults to true.
func CheckpointsEnabled() bool {
	v := os.Getenv("CHECKPOINTS_ENABLED")
	if v == "" {
		return true
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return enabled
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// Rules materializes the learner's static rules from env overrides on
// top of the stock defaults. The result is copied into the learner at
// construction and never mutated afterwards.
func Rules() domain.StaticRules {
	rules := domain.DefaultStaticRules()
	rules.ReevaluationIntervalEvents = intEnv("REEVALUATION_INTERVAL", rules.ReevaluationIntervalEvents)
	rules.CheckpointIntervalEvents = intEnv("CHECKPOINT_INTERVAL", rules.CheckpointIntervalEvents)
	rules.ReplayBufferSize = intEnv("REPLAY_BUFFER_SIZE", rules.ReplayBufferSize)
	rules.ShadowEvalAfterEvents = intEnv("SHADOW_EVAL_AFTER_EVENTS", rules.ShadowEvalAfterEvents)
	return rules
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
