// Package sequencer drives a transaction button: it dispatches an ordered plan
// of transaction steps one at a time, follows each step's live status, and
// advances according to a configurable gate. Cancelling through Toggle resets
// the visible state machine; whether the in-flight submission is aborted is
// governed by the CancelPolicy.
//
// Like field binders, a Sequencer is owned by the goroutine driving its
// loop.Scheduler. Status notifications from other goroutines are marshalled
// onto it.
package sequencer
