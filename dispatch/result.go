package dispatch

import "github.com/rsio/chancore/channel"

// Result is the fault record Run returns. Both fields nil means no work
// was done; a non-nil Channel with a nil Err means that channel closed
// normally; both non-nil means its handler (or its own Wait) raised.
type Result struct {
	Channel channel.Channel
	Err     error
}

// Empty reports whether the result carries no information at all.
func (r Result) Empty() bool { return r.Channel == nil && r.Err == nil }
