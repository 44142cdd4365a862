// Package txform binds wallet form fields to live values and validators, and
// drives multi-step transaction buttons.
//
// The building blocks live under pkg/: loop (the cooperative scheduler),
// source, field, txstatus, sequencer, validators, display and config. This
// package wires them together from a single configuration:
//
//	cfg, _ := config.Load("txform.yaml")
//	rt, _ := txform.NewRuntime(cfg)
//	to, _ := rt.Field("to", validators.NameAddress)
//	_ = to.Mount()
package txform
