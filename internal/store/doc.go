// Package store provides message persistence for msgboard.
//
// The Store interface abstracts the database so services can take a test
// double; SQLiteStore is the production implementation. Mutations that need
// authorization (update, delete) scope their statement by both message id and
// edit token, making the credential check and the effect a single atomic unit.
package store
