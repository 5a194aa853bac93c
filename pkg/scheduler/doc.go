// Package scheduler drives uplink attempts in the background.
//
// A Scheduler owns at most one run. A run is one goroutine that repeats
// attempts at the configured interval, reports each result to a callback,
// and retries quickly while the clock is not yet trusted. Stop signals the
// run through a channel, so an idle wait ends immediately; an attempt in
// flight gets StopTimeout to finish before its context is cancelled.
//
//	s := scheduler.New(client, scheduler.Options{Logger: logger})
//	err := s.Start(scheduler.Config{
//	    Credentials: "device-0001:secret-token",
//	    Callback: func(r uplink.Result) {
//	        logger.Info("uplink", "result", r)
//	    },
//	})
//	...
//	s.Stop()
package scheduler
