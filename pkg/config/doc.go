// Package config loads the txform configuration file. Files may be JSON or
// YAML; fields left out keep the values from Default.
package config
