// Package srs implements the fixed-interval re-reading policy.
//
// A note that has been read n times waits Intervals[min(n, len-1)] days before
// it is due again. With the default table that is 1, 3, 7, 14, 30, 60, 90, 180
// and finally 365 days, after which the interval stops growing.
//
// Next-read dates are always truncated to the start of the day so that due
// checks are day-granular: a note due today stays due until midnight no
// matter what time it was scheduled. All functions here are pure and take the
// current time as an argument.
package srs
