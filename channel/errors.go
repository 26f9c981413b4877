package channel

import "errors"

// ErrClosed is returned by write operations on a channel that has already
// been closed.
var ErrClosed = errors.New("channel: write after close")
