// Package board implements the message lifecycle and its capability-based
// authorization model.
//
// Every message is bound at creation to a single opaque edit token, returned
// to the creator exactly once. The token is the sole mutation credential:
// there are no accounts or sessions. Edits and deletes present the token in
// the request and the store applies it atomically with the mutation.
//
// Input validation is a pure function over the raw field values and reports
// all violations together, so it can be exercised without a store.
package board
