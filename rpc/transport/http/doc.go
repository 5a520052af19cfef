// Package http provides the HTTP transport.
//
// The server routes "POST /{shardId}" requests (body = serialized message) to the
// registered handler and serves the Prometheus metrics of the process on "GET /metrics"
// (github.com/VictoriaMetrics/metrics). Every request is logged with its status and duration.
//
// The client sends each request to the next endpoint (round-robin) and retries
// failed attempts on the following endpoints. Endpoints without a scheme get "http://".
// A response status other than 200 counts as a failed attempt.
package http
