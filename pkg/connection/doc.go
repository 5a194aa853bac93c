// Package connection owns the uplink's single reusable connection handle.
//
// The Cache creates the handle lazily on the first attempt, binds it to
// the endpoint with TCP keep-alive probing, and stamps the identifying
// headers onto it. When credentials change the headers are replaced in
// place so the TLS session survives rotation. Only a transport failure
// tears the handle down, which forces a full rebuild (headers included)
// on the next attempt.
//
// # States
//
//	DISCONNECTED --Ensure--> CONNECTED --Invalidate--> DISCONNECTED
//	any          --Close---> CLOSED
//
// There is no reconnection loop: the caller's next attempt is the retry.
package connection
