package cmd

import (
	"context"
	"errors"

	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/console"
	"nathanbeddoewebdev/dropproxy/internal/credentials"
	dnsdomain "nathanbeddoewebdev/dropproxy/internal/dns/domain"
	"nathanbeddoewebdev/dropproxy/internal/provision"
)

// Process exit codes.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitUsage                = 2
	ExitMissingConfiguration = 3
	ExitMissingCredentials   = 4
	ExitPlaceholder          = 5
	ExitInvalidRequest       = 6
	ExitDomainNotFound       = 7
	ExitIPUnavailable        = 8
	ExitRemoteUnreachable    = 9
	ExitRemoteSession        = 10
	ExitActionTimedOut       = 11
	ExitActionFailed         = 12
	ExitInterrupted          = 13
)

var exitCodes = []struct {
	err  error
	code int
}{
	{provision.ErrInterrupted, ExitInterrupted},
	{context.Canceled, ExitInterrupted},
	{console.ErrOutputClosed, ExitInterrupted},
	{app.ErrUsage, ExitUsage},
	{provision.ErrMissingConfiguration, ExitMissingConfiguration},
	{credentials.ErrMissingCredentials, ExitMissingCredentials},
	{credentials.ErrMalformedCredentials, ExitMissingCredentials},
	{credentials.ErrPlaceholderCredential, ExitPlaceholder},
	{provision.ErrInvalidRequest, ExitInvalidRequest},
	{dnsdomain.ErrInvalidRecord, ExitInvalidRequest},
	{provision.ErrDomainNotFound, ExitDomainNotFound},
	{provision.ErrIPUnavailable, ExitIPUnavailable},
	{provision.ErrRemoteUnreachable, ExitRemoteUnreachable},
	{provision.ErrRemoteSession, ExitRemoteSession},
	{provision.ErrActionTimedOut, ExitActionTimedOut},
	{provision.ErrActionFailed, ExitActionFailed},
}

// ExitCode maps err to the process exit status. The first matching
// sentinel wins.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, ec := range exitCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ExitFailure
}
