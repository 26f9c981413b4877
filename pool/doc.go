// Package pool implements a fixed-size work-stealing goroutine pool: each
// worker owns a private deque, popping its own back (LIFO) before
// stealing from a random peer's front (FIFO).
package pool
