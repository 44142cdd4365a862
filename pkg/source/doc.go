// Package source defines the live value contract that form fields bind to.
// A Source can be read, observed through Tie/Untie, pushed a new value with
// Changed, or cleared with Reset. Concrete sources (balances, chain queries,
// address books) live outside this module; Value is an in-memory
// implementation used by the CLI and tests.
package source
