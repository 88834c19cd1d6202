// Package credential holds the credential set the gate is built from.
//
// A Set is loaded once at startup by Load and is immutable afterwards:
// it has no setters and its accessors return copies. Load never fails;
// missing or malformed secrets degrade to safe defaults (admin auth
// disabled, empty token list) with diagnostics at a severity matching
// their impact.
package credential
