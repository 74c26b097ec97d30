// Package process supervises the button node binary.
//
// The Manager is the node's watchdog reset. It starts the node, relays its
// output, and polls a health check (normally heartbeat.StaleCheck). When the
// node exits or fails the check MaxHealthFailures times in a row, the
// Manager kills the whole process group and starts a fresh node after an
// exponential backoff delay. A node that stays up for StableThreshold
// resets the backoff.
//
// Example usage:
//
//	mgr := process.NewManager(process.Config{
//	    Name:        "buttonnode",
//	    Binary:      "/usr/local/bin/buttonnode",
//	    HealthCheck: heartbeat.StaleCheck("/run/buttonnode/heartbeat", 5*time.Second),
//	})
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Stop()
package process
