// Package reminder finds users with notes due for reading and publishes a
// reminder event for each of them.
//
// A Scanner performs one pass for the current hour of the scheduling zone:
// every opted-in user whose daily reminder time falls in that hour is
// checked with the same due rule the API uses. A Scheduler repeats the pass
// on a ticker. Delivery is left to event handlers; LogNotifier only logs.
package reminder
