package treesync

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const renameMaxTries = 5

// transient reports whether a rename failure is worth retrying. These show
// up when another process (indexers, virus scanners) briefly holds a file.
func transient(err error) bool {
	return errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.ETXTBSY)
}

func newRenameBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

// withRetry runs op, retrying transient failures with exponential backoff.
// Cancellation of ctx is ignored: a swap that has started always finishes.
func withRetry(ctx context.Context, op func() error) error {
	_, err := backoff.Retry(context.WithoutCancel(ctx), func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !transient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(newRenameBackOff()),
		backoff.WithMaxTries(renameMaxTries),
	)
	return err
}
