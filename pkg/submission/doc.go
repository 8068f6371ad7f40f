// Package submission accepts end-user form submissions. A submission is
// validated against the fields visible for its own values, reduced to a
// payload of visible fields and forwarded to a Store only when every visible
// field passes.
package submission
