package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExactArgs is cobra.ExactArgs with the error marked as ErrUsage.
func ExactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

// RangeArgs is cobra.RangeArgs with the error marked as ErrUsage.
func RangeArgs(min, max int) cobra.PositionalArgs {
	return usageArgs(cobra.RangeArgs(min, max))
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}

// FlagError marks flag parsing errors as ErrUsage. It is installed with
// cobra.Command.SetFlagErrorFunc.
func FlagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
