// Package parser recovers structured values from free-form model output.
//
// Every function here is pure and never fails: when nothing usable is found
// it returns nil (or an empty slice) and the caller treats that as absence of
// data, not as an error.
package parser
