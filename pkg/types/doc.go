// Package types defines the Inventory interface, the entity types it moves
// around (spaces, items, moves) and the error kinds every storage operation
// reports.
//
// Callers attach an Inventory to a database file, issue operations, and
// detach when done. All state lives in the database; nothing is cached
// between calls.
package types
