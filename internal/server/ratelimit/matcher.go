package ratelimit

import "strings"

// unlimited lists routes that bypass rate limiting entirely.
var unlimited = []EndpointConfig{
	{Path: "/health", Method: "GET"},
}

// MatchEndpoint returns the configuration for method and path, or nil when
// the default limit applies. An exact path wins; otherwise the longest
// matching "/"-terminated prefix is used.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range unlimited {
		if unlimited[i].Path == path && unlimited[i].Method == method {
			return &unlimited[i]
		}
	}

	var best *EndpointConfig
	for i := range configs {
		ec := &configs[i]
		if ec.Method != method {
			continue
		}
		if ec.Path == path {
			return ec
		}
		if strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) &&
			(best == nil || len(ec.Path) > len(best.Path)) {
			best = ec
		}
	}
	return best
}
