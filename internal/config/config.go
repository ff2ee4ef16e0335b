package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Google GoogleConfig // Google OAuth client settings

	ServiceImageDir string // directory where service images are written
	ProfileImageDir string // directory where profile images are written
}

// GoogleConfig carries the OAuth client settings for the Google identity
// provider.  The authorization and token endpoints are configurable so that
// tests can point the bridge at a local HTTP server instead of Google.
type GoogleConfig struct {
	ClientID     string // OAuth client identifier (also the expected id_token audience)
	ClientSecret string // OAuth client secret
	AuthEndpoint string // provider authorization endpoint
	TokenURL     string // provider token endpoint
	RedirectURL  string // redirect URI registered with the provider
	Scope        string // requested scopes, space separated
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                   // environment (dev/test/prod)
		Port:           must("APP_PORT"),                  // port to bind the HTTP server
		DBUser:         must("DB_USER"),                   // database user
		DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
		DBHost:         must("DB_HOST"),                   // database host
		DBPort:         must("DB_PORT"),                   // database port
		DBName:         must("DB_NAME"),                   // database name
		JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor
		Google: GoogleConfig{
			ClientID:     must("GOOGLE_CLIENT_ID"),     // OAuth client id
			ClientSecret: must("GOOGLE_CLIENT_SECRET"), // OAuth client secret
			AuthEndpoint: getenv("GOOGLE_AUTH_ENDPOINT", "https://accounts.google.com/o/oauth2/v2/auth"),
			TokenURL:     getenv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			RedirectURL:  must("GOOGLE_REDIRECT_URL"), // registered redirect URI
			Scope:        getenv("GOOGLE_SCOPE", "openid email profile"),
		},
		ServiceImageDir: getenv("UPLOAD_DIR_SERVICES", "uploaded_images/services"),
		ProfileImageDir: getenv("UPLOAD_DIR_PROFILES", "uploaded_images/profiles"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
