// Package rate implements the Redis-backed failure counters behind the
// brute-force guard. Counters are fixed-window: the first increment in a window
// sets the TTL, subsequent increments ride it. Increments are single Redis INCR
// calls and therefore safe under concurrent requests.
package rate
