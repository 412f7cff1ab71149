package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Connection settings are required;
// reservation tuning knobs have production defaults and only need to be
// set when operators want different budgets.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	ReservationWindow  time.Duration // how long a reservation holds a ticket before expiry
	ReaperPeriod       time.Duration // cadence of the expiry reaper
	ReaperInitialDelay time.Duration // delay before the reaper's first run
	LockWaitBudget     time.Duration // max time to wait for the per-event lock
	LockLeaseBudget    time.Duration // max time the per-event lock may be held
	CacheTTL           time.Duration // lifetime of read-path cache entries
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),      // environment (dev/test/prod)
		Port:   must("APP_PORT"),     // port to bind the HTTP server
		DBUser: must("DB_USER"),      // database user
		DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost: must("DB_HOST"),      // database host
		DBPort: must("DB_PORT"),      // database port
		DBName: must("DB_NAME"),      // database name

		ReservationWindow:  envDur("RESERVATION_WINDOW", 10*time.Minute),
		ReaperPeriod:       envDur("REAPER_PERIOD", 5*time.Minute),
		ReaperInitialDelay: envDur("REAPER_INITIAL_DELAY", time.Minute),
		LockWaitBudget:     envDur("LOCK_WAIT_BUDGET", 3*time.Second),
		LockLeaseBudget:    envDur("LOCK_LEASE_BUDGET", 10*time.Second),
		CacheTTL:           envDur("CACHE_TTL", 10*time.Minute),
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

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
