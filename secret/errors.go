package secret

import "errors"

var (
	// ErrSecretUnreadable reports a secret that is missing or cannot be read.
	ErrSecretUnreadable = errors.New("secret: unreadable")

	// ErrSecretMalformed reports a secret whose content does not parse.
	ErrSecretMalformed = errors.New("secret: malformed")

	// ErrSecretEmpty reports a secret that is blank after trimming.
	ErrSecretEmpty = errors.New("secret: empty")

	// ErrRefEscapesRoot reports a file reference outside the provider root.
	ErrRefEscapesRoot = errors.New("secret: reference escapes root")

	// ErrProviderNotRegistered reports a reference to an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrMissingEnv reports an unset environment variable without a default.
	ErrMissingEnv = errors.New("secret: missing required environment variables")
)
