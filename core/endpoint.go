package core

import (
	"strings"
)

const (
	solrPathPrefix  = "/solr/"
	defaultPingPath = "admin/system"
)

// BuildEndpoint derives the query engine target for a decision. The second
// return value is false for a disabled decision, which leaves externally
// supplied configuration untouched.
func BuildEndpoint(decision ConnectionDecision, search SearchConfig) (Endpoint, bool) {
	scheme := normalizeScheme(search.Scheme)
	endpoint := Endpoint{
		Scheme:   scheme,
		Host:     strings.TrimSpace(search.DefaultHost),
		PingPath: defaultPingPath,
	}

	switch decision.Kind {
	case DecisionAutoMatched:
		endpoint.CoreID = decision.Core.CoreID
		endpoint.Path = solrPath(decision.Core.CoreID)
		if host := strings.TrimSpace(decision.Core.Hostname); host != "" {
			endpoint.Host = host
		}
	case DecisionReadOnlyFallback:
		endpoint.CoreID = decision.FallbackCoreID
		endpoint.Path = solrPath(decision.FallbackCoreID)
		endpoint.ReadOnly = true
	case DecisionExplicitOverride:
		if decision.Override == nil {
			return Endpoint{}, false
		}
		applyOverride(&endpoint, *decision.Override)
	default:
		return Endpoint{}, false
	}

	if endpoint.Port == 0 {
		endpoint.Port = defaultPort(endpoint.Scheme)
	}
	return endpoint, true
}

func applyOverride(endpoint *Endpoint, override OverrideConfig) {
	if indexID := strings.TrimSpace(override.IndexID); indexID != "" {
		endpoint.CoreID = indexID
		endpoint.Path = solrPath(indexID)
	}
	if host := strings.TrimSpace(override.Host); host != "" {
		endpoint.Host = host
	}
	if path := strings.TrimSpace(override.Path); path != "" {
		endpoint.Path = path
	}
	if scheme := strings.TrimSpace(override.Scheme); scheme != "" {
		endpoint.Scheme = normalizeScheme(scheme)
	}
	if override.Port > 0 {
		endpoint.Port = override.Port
	}
	endpoint.Options = copyStringMap(override.Options)
}

func solrPath(coreID string) string {
	coreID = strings.TrimSpace(coreID)
	if coreID == "" {
		return ""
	}
	return solrPathPrefix + coreID
}

func normalizeScheme(scheme string) string {
	if strings.EqualFold(strings.TrimSpace(scheme), "https") {
		return "https"
	}
	return "http"
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}
