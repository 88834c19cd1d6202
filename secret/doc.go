// Package secret reads credential material from secret stores.
//
// It supports:
//   - Strict environment expansion with defaults (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider + Registry), with a
//     filesystem provider for mounted secrets and a Vault provider
//   - Secret references in configuration values (see Resolver)
//   - Soft-fail loading of text and structured secrets (see Loader)
//
// References use the prefix "secretref:":
//   - File:  secretref:file:node-red/admin-password-hash
//   - Vault: secretref:vault:secret/data/node-red#api-tokens
package secret
