// Package logic holds the small stateful building blocks shared by every
// computer model: edge detectors, latches, confirmation timers, rate
// limiters, filters and lookup tables.
//
// All blocks are stepped once per tick by their owner and keep their state
// in the struct; none of them block or start goroutines. Not safe for
// concurrent use.
package logic
