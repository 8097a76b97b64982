package errors

import (
	"context"
)

// CheckContext returns an error if the context is canceled or timed out.
// Gateways call it on their failure paths so a cancellation surfaces as
// Canceled rather than as the operation's own failure code.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}
