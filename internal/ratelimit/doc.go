// Package ratelimit implements fixed-window request limiting.
//
// Windows are aligned to multiples of the window length, so every client's
// counter resets at the same instant. Counts live either in process memory
// or in Redis when several server instances must share them.
package ratelimit
