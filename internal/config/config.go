package config // package config loads application configuration from environment variables

import (
    "errors"
    "io/fs"
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv"
    zlog "github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    LogLevel     string // zerolog level name
    DBUser       string // database username
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name
    DBMigrate    bool   // create missing tables on start
    JWTSecret    string // secret used to sign JWTs
    AccessTTLMin int    // access token time‑to‑live in minutes
    BcryptCost   int    // bcrypt cost for password hashing
    AMQPURL      string // RabbitMQ URL; empty disables ticket events
    TicketLogDir string // where the ticket.booked consumer writes tickets.log
    AdminUser    string // bootstrap administrator created at start (optional)
    AdminPass    string // password of the bootstrap administrator
}

// LoadDotEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
    if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
        zlog.Warn().Err(err).Msg("could not read .env")
    }
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),                      // environment (dev/test/prod)
        Port:         must("APP_PORT"),                     // port to bind the HTTP server
        LogLevel:     getenv("LOG_LEVEL", "info"),          // log verbosity
        DBUser:       must("DB_USER"),                      // database user
        DBPass:       os.Getenv("DB_PASS"),                 // database password (empty allowed)
        DBHost:       must("DB_HOST"),                      // database host
        DBPort:       must("DB_PORT"),                      // database port
        DBName:       must("DB_NAME"),                      // database name
        DBMigrate:    envBool("DB_MIGRATE", true),          // run schema creation at boot
        JWTSecret:    must("JWT_SECRET"),                   // secret used for signing JWTs
        AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),      // TTL for access tokens in minutes
        BcryptCost:   mustInt("BCRYPT_COST"),               // bcrypt cost factor
        AMQPURL:      os.Getenv("AMQP_URL"),                // optional broker
        TicketLogDir: getenv("TICKET_LOG_DIR", "logs"),     // consumer output directory
        AdminUser:    os.Getenv("ADMIN_USERNAME"),          // optional bootstrap admin
        AdminPass:    os.Getenv("ADMIN_PASSWORD"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        zlog.Fatal().Str("key", key).Msg("missing required env var")
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        zlog.Fatal().Str("key", key).Str("value", s).Msg("invalid int env var")
    }
    return n
}
