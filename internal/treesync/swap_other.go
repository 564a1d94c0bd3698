//go:build !linux

package treesync

import "errors"

var errExchangeUnsupported = errors.New("atomic exchange not supported on this platform")

func exchange(_, _ string) error {
	return errExchangeUnsupported
}

func exchangeUnsupported(err error) bool {
	return errors.Is(err, errExchangeUnsupported)
}
