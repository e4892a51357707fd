package client

import "strings"

// Endpoint identifies one of the fixed trading bot API resources.
type Endpoint string

const (
	EndpointStatus  Endpoint = "status"
	EndpointStats   Endpoint = "stats"
	EndpointJobs    Endpoint = "jobs"
	EndpointTrades  Endpoint = "trades"
	EndpointTrade   Endpoint = "trade"
	EndpointPredict Endpoint = "predict"
	EndpointConfig  Endpoint = "config"
	EndpointTrain   Endpoint = "train"
)

var endpointPaths = map[Endpoint]string{
	EndpointStatus:  "/api/status",
	EndpointStats:   "/api/stats",
	EndpointJobs:    "/api/jobs",
	EndpointTrades:  "/api/trades",
	EndpointTrade:   "/api/trade",
	EndpointPredict: "/api/predict",
	EndpointConfig:  "/api/config",
	EndpointTrain:   "/api/train",
}

// Endpoints lists every known endpoint in a stable order
func Endpoints() []Endpoint {
	return []Endpoint{
		EndpointStatus,
		EndpointStats,
		EndpointJobs,
		EndpointTrades,
		EndpointTrade,
		EndpointPredict,
		EndpointConfig,
		EndpointTrain,
	}
}

// Path returns the path of the endpoint relative to the default /api root.
// Unknown endpoints return an empty string.
func (e Endpoint) Path() string {
	return endpointPaths[e]
}

// pathFor returns the endpoint path rebased on the client's api root, plus any extra path segments.
func (c *Client) pathFor(e Endpoint, segments ...string) string {
	p := c.apiRoot + strings.TrimPrefix(e.Path(), DefaultAPIRoot)
	for _, s := range segments {
		p += "/" + s
	}
	return p
}

// NormalizePath returns the canonical absolute form of p.
//
// Paths that already start with the api root are returned unchanged,
// relative paths get exactly one leading separator and anything else is left alone.
// NormalizePath(root, NormalizePath(root, p)) == NormalizePath(root, p) for all inputs.
func NormalizePath(root, p string) string {
	if root != "" && strings.HasPrefix(p, root) {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
