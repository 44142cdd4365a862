// Package loop provides the cooperative, single-threaded scheduler that owns
// field binders and transaction sequencers. Work posted from any goroutine is
// queued and executed in order on whichever goroutine drives the loop, either
// explicitly through Tick/Drain (tests, synchronous callers) or continuously
// through Run.
package loop
