// Package channel defines the Waiter/Channel abstraction used throughout
// this module: a readiness-producing event source that may be polled
// (synchronous discipline) or blocked on efficiently (asynchronous
// discipline), optionally yielding a value on each ready event.
package channel
