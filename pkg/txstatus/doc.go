// Package txstatus models the lifecycle of a submitted chain transaction and
// classifies it into the small set of display tiers consumed by transaction
// buttons. Statuses are produced by the chain-submission collaborator; this
// package only describes and classifies them.
package txstatus
