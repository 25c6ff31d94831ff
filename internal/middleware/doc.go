// Package middleware provides HTTP middleware for the video library server.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with request body size
//   - Prometheus request metrics labelled by route template
//   - Configurable filtering for stored-file routes and health checks
package middleware
