// Package store implements the cache transitions. Each of the three slices
// (entities, refs, request statuses) has its own total transition function;
// Apply runs all three over one event against an immutable prior state and
// returns the next state, or an error with the prior state left untouched.
//
// Transitions preserve identity: a slice map or record that an event does not
// touch is carried over by pointer, so readers can detect change with a
// pointer comparison.
package store
