package ratelimit

import (
	"strings"
)

// unmetered lists the probe and scrape paths that are never limited.
var unmetered = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// unlimited is returned for unmetered requests.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration that governs a request, or nil when
// the default limit applies. An exact path wins; otherwise the longest
// configured prefix ending in "/" wins, so "/api/fields/" covers
// "/api/fields/{name}" but not "/api/fields".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unmetered[path] && (method == "GET" || method == "HEAD") {
		cfg := unlimited
		return &cfg
	}

	var best *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if !strings.EqualFold(cfg.Method, method) {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) &&
			(best == nil || len(cfg.Path) > len(best.Path)) {
			best = cfg
		}
	}
	return best
}
