// Package fips brings up the stunnel tunnel that carries git traffic when FIPS mode
// is requested.
//
// Ownership boundary:
// - activation gate and required-field validation
//
// - stunnel.conf materialization and trust-anchor persistence
//
// - platform launch strategies and the caller-owned process registry
//
// Every step runs to completion before the next starts. A failure stops the sequence
// and leaves whatever was already written on disk.
package fips
