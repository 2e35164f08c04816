package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const (
	// DatabaseSchemePostgres is the postgres database scheme identifier
	DatabaseSchemePostgres = "postgres"
)

type Config struct {
	RPCURL    string
	WSPath    string
	DBDialect string // postgres only
	DBDsn     string // DSN string passed to GORM driver
	AppAPIURL string // optional: Cosmos REST API base URL (e.g., http://node:1317)
	Debug     bool   // if true: write debug logs; daemon keeps the TUI either way

	// AdminAddrs are the identities the witness check accepts for gated
	// operations. Empty means open mode: any caller passes.
	AdminAddrs []string
	// SystemIdentity is the caller identity the telemetry feed reports
	// metrics under. It is always authorized alongside AdminAddrs.
	SystemIdentity string
	// MetricsFlushBlocks is how many observed blocks make one telemetry
	// window before scores are flushed into the engine.
	MetricsFlushBlocks int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %d\n", key, v, def)
		return def
	}
	return n
}

// parseDatabaseURL interprets DATABASE_URL and returns (dialect, dsn).
// Supported schemes: postgres, postgresql.
func parseDatabaseURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", err
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case DatabaseSchemePostgres, "postgresql":
		// GORM postgres driver accepts URL DSN as-is
		return DatabaseSchemePostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %s", u.Scheme)
	}
}

func Load() Config {
	cfg := Config{
		RPCURL:             getenv("RPC_URL", "http://localhost:26657"),
		WSPath:             getenv("WS_PATH", "/websocket"),
		AppAPIURL:          os.Getenv("APP_API_URL"),
		Debug:              getenvBool("DEBUG", false),
		SystemIdentity:     getenv("SYSTEM_IDENTITY", "telemetry"),
		MetricsFlushBlocks: getenvInt("METRICS_FLUSH_BLOCKS", 20),
	}

	if admins := strings.TrimSpace(os.Getenv("ADMIN_ADDRS")); admins != "" {
		for _, a := range strings.Split(admins, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.AdminAddrs = append(cfg.AdminAddrs, a)
			}
		}
	}

	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		if dialect, dsn, err := parseDatabaseURL(dbURL); err == nil {
			cfg.DBDialect = dialect
			cfg.DBDsn = dsn
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid DATABASE_URL, disabling persistence: %v\n", err)
		}
	}

	return cfg
}

// SetDatabaseURL overrides the database settings, e.g. from a CLI flag.
func (c *Config) SetDatabaseURL(databaseURL string) error {
	if strings.TrimSpace(databaseURL) == "" {
		c.DBDialect = ""
		c.DBDsn = ""
		return nil
	}
	dialect, dsn, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return err
	}
	c.DBDialect = dialect
	c.DBDsn = dsn
	return nil
}

// Authorized returns the full identity allowlist for the witness check:
// the configured admins plus the system identity. Empty means open mode.
func (c Config) Authorized() []string {
	if len(c.AdminAddrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.AdminAddrs)+1)
	out = append(out, c.AdminAddrs...)
	if c.SystemIdentity != "" {
		out = append(out, c.SystemIdentity)
	}
	return out
}

func (c Config) WSURL() string {
	// cometbft http client expects a separate ws endpoint path
	return c.WSPath
}

func (c Config) String() string {
	return fmt.Sprintf("rpc=%s ws_path=%s db=%s", c.RPCURL, c.WSPath, c.DBDialect)
}

// DebugString returns a human-friendly configuration string with masked secrets.
func (c Config) DebugString() string {
	return fmt.Sprintf(
		"rpc=%s ws_path=%s db=%s dsn=%s app_api_url=%s admins=%d flush_blocks=%d",
		c.RPCURL,
		c.WSPath,
		c.DBDialect,
		maskDSN(c.DBDialect, c.DBDsn),
		c.AppAPIURL,
		len(c.AdminAddrs),
		c.MetricsFlushBlocks,
	)
}

func maskDSN(dialect, dsn string) string {
	switch strings.ToLower(dialect) {
	case DatabaseSchemePostgres:
		if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
			if u.User != nil {
				username := u.User.Username()
				u.User = url.User(username)
			}
			return u.String()
		}
		// Fallback for DSN as key-value list
		parts := strings.Fields(dsn)
		for i, p := range parts {
			lower := strings.ToLower(p)
			if strings.HasPrefix(lower, "password=") {
				parts[i] = "password=***"
			}
		}
		return strings.Join(parts, " ")
	default:
		return dsn
	}
}
