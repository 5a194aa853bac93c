// Package transport provides the HTTPS primitive used by the uplink client.
//
// A Factory opens a Handle bound to one method and URL. The handle keeps
// its TCP+TLS session alive between requests, carries request headers
// that can be replaced in place, and performs one request per Perform
// call without retrying.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   HTTP/1.1 POST (empty/JSON)   │
//	├────────────────────────────────┤
//	│        TLS 1.2 or 1.3          │
//	├────────────────────────────────┤
//	│   TCP with keep-alive probes   │
//	└────────────────────────────────┘
//
// # Keep-Alive
//
// Dead peers are detected by TCP keep-alive probing:
//   - Idle time before the first probe: 5 seconds
//   - Probe interval: 5 seconds
//   - Probe count: 3
package transport
