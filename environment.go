package agora

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognized by New.
const (
	// EnvBaseURL overrides the API base URL.
	EnvBaseURL = "AGORA_BASE_URL"
	// EnvAPIKey supplies the bearer token.
	EnvAPIKey = "AGORA_API_KEY"
	// EnvEnvironment selects the environment tag (dev/development/local;
	// anything else means production).
	EnvEnvironment = "AGORA_ENV"
	// EnvDevBaseURL overrides the base URL when the environment is development.
	EnvDevBaseURL = "AGORA_DEV_BASE_URL"
	// EnvProdBaseURL overrides the base URL in production.
	EnvProdBaseURL = "AGORA_PROD_BASE_URL"
)

// DefaultLocalBaseURL is the base URL used in the dev and local
// environments when nothing more specific is configured.
const DefaultLocalBaseURL = "http://localhost:8000"

// Environment is the resolved deployment environment tag.
type Environment string

const (
	// EnvironmentProduction is the default environment.
	EnvironmentProduction Environment = "production"
	// EnvironmentDevelopment is selected by AGORA_ENV=dev or development.
	EnvironmentDevelopment Environment = "development"
	// EnvironmentLocal is selected by AGORA_ENV=local.
	EnvironmentLocal Environment = "local"
)

// ParseEnvironment maps a raw tag to an Environment. Matching is
// case-insensitive; unrecognized values mean production.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvironmentDevelopment
	case "local":
		return EnvironmentLocal
	default:
		return EnvironmentProduction
	}
}

// isDevLike reports whether the environment gets the localhost default.
func (e Environment) isDevLike() bool {
	return e == EnvironmentDevelopment || e == EnvironmentLocal
}

// LoadEnv loads environment variables from the given .env files (or ./.env
// when none are named) without overriding variables already set. Call it
// before New; the client never reads files or the environment after
// construction.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// resolveBaseURL applies the precedence explicit option > AGORA_BASE_URL >
// per-environment override > localhost default (dev/local only).
func resolveBaseURL(explicit string, env Environment) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if fromEnv := os.Getenv(EnvBaseURL); fromEnv != "" {
		return fromEnv, nil
	}

	override := EnvProdBaseURL
	if env.isDevLike() {
		override = EnvDevBaseURL
	}
	if fromEnv := os.Getenv(override); fromEnv != "" {
		return fromEnv, nil
	}

	if env.isDevLike() {
		return DefaultLocalBaseURL, nil
	}
	return "", ErrMissingBaseURL
}
