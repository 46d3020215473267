// Package features resolves feature flags from CLI overrides, the config
// file and compiled-in defaults, in that order.
package features
