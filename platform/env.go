// Package platform reads the identity signals of the running deployment from
// the hosting platform's process environment.
package platform

import (
	"context"
	"os"
	"path"
	"strings"

	"github.com/goliatone/go-searchcore/core"
)

const (
	EnvSiteEnvironment = "AH_SITE_ENVIRONMENT"
	EnvSiteDatabase    = "AH_SITE_DATABASE"
	EnvProduction      = "AH_PRODUCTION"
	EnvSitePath        = "SEARCHCORE_SITE_PATH"
	EnvDatabaseName    = "SEARCHCORE_DATABASE_NAME"

	DefaultSitePath = "sites/default"
)

type Config struct {
	NetworkID string
	// SitePath is the site configuration directory; its last segment is the
	// site folder. The environment variable wins when set.
	SitePath     string
	DatabaseName string
}

type LookupFunc func(key string) (string, bool)

type EnvReader struct {
	config Config
	lookup LookupFunc
}

func NewEnvReader(cfg Config) *EnvReader {
	return &EnvReader{config: cfg, lookup: os.LookupEnv}
}

// WithLookup replaces the environment lookup, mainly for tests.
func (r *EnvReader) WithLookup(lookup LookupFunc) *EnvReader {
	if lookup != nil {
		r.lookup = lookup
	}
	return r
}

// Signals is read fresh on every call and never cached.
func (r *EnvReader) Signals(context.Context) (core.IdentitySignals, error) {
	sitePath := firstNonEmpty(r.env(EnvSitePath), r.config.SitePath, DefaultSitePath)
	signals := core.IdentitySignals{
		NetworkID:       strings.TrimSpace(r.config.NetworkID),
		EnvironmentName: r.env(EnvSiteEnvironment),
		SiteFolder:      SiteFolder(sitePath),
		DatabaseName:    firstNonEmpty(r.env(EnvSiteDatabase), r.env(EnvDatabaseName), r.config.DatabaseName),
		ProductionFlag:  Truthy(r.env(EnvProduction)),
	}
	return signals.Normalize(), nil
}

func (r *EnvReader) env(key string) string {
	value, ok := r.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// SiteFolder returns the last segment of a site path: "sites/example" gives
// "example".
func SiteFolder(sitePath string) string {
	sitePath = strings.TrimRight(strings.TrimSpace(sitePath), "/")
	if sitePath == "" {
		return ""
	}
	return path.Base(sitePath)
}

// Truthy treats any value other than empty, "0" and "false" as set.
func Truthy(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != "0" && !strings.EqualFold(value, "false")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

var _ core.SignalsReader = (*EnvReader)(nil)
