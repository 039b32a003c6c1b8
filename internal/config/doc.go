// Package config owns the runtime settings the FIPS bootstrap reads.
//
// Ownership boundary:
// - optional runtime fields and their presence semantics
//
// - file loading (TOML, YAML) and environment overrides
//
// - the flag/config merge performed before activation
package config
