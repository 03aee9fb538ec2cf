// Package registry keeps the session's points list: named objects in
// insertion order, with an explicit policy for duplicate names.
//
// Iteration order is the order objects were first added. Replacing a
// duplicate keeps the original position so sweep output stays stable
// across configuration reloads.
package registry
