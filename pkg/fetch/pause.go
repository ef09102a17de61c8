package fetch

import (
	"context"
	"time"
)

// Pause sleeps for d or until ctx is done. Lookups call it after every request
// so a single stream never hits the remote sites faster than the configured delay.
func Pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// JoinURL appends path segments to base without doubling slashes.
func JoinURL(base string, segments ...string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	for _, s := range segments {
		base += "/" + s
	}

	return base
}
