// Package dispatch coordinates a set of registered channels, invoking a
// handler whenever one becomes ready and surfacing the first fault (close
// or handler error) deterministically through Run.
package dispatch
