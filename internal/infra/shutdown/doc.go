// Package shutdown provides graceful shutdown for savecore.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Timeout-based forced shutdown
//   - Cleanup callback registration
//   - Programmatic shutdown for long-running commands
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(store.CloseContext)
//	return h.Wait()
package shutdown
