// Package uplink sends device heartbeats to the Qrystal Uplink service.
//
// A Client runs one attempt at a time through a fixed pipeline:
//
//	link up? -> clock trusted? -> credentials valid? -> connection -> POST
//
// The first failing step decides the Result. Cheap local checks run
// before any parsing or network I/O, and only a transport failure tears
// down the cached connection. There is no retry inside an attempt; the
// caller, or the scheduler package, is the retry loop.
//
// # Blocking use
//
//	client := uplink.New(uplink.DefaultConfig())
//	defer client.Close()
//
//	for {
//	    res := client.Attempt(ctx, "device-0001:secret-token")
//	    if res != uplink.ResultOK {
//	        slog.Warn("heartbeat failed", "result", res, "hint", res.Description())
//	    }
//	    time.Sleep(30 * time.Second)
//	}
//
// A Client serializes its own attempts, but it is meant to be driven by a
// single loop: either the caller's or a scheduler's, not both.
package uplink
