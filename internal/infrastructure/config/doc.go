// Package config loads and validates Attic configuration.
//
// Configuration is layered: hardcoded defaults, then the YAML file, then
// ATTIC_* environment variable overrides. Validation runs after all layers
// are applied so a partially-specified file still produces a usable config.
//
// The loaded Config is passed explicitly into each component at construction
// time; no package reads configuration from ambient globals.
package config
