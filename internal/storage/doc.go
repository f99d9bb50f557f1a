// Package storage provides stub storage abstractions and implementations.
//
// Store is a generic interface over any Item: something with an ID, a
// group and a priority. Memory is the thread-safe in-memory implementation;
// Group is a live view of a store restricted to one group, used to scope
// stubs to the contract they belong to.
//
// List orders items by priority (highest first) and then by insertion, so
// the first item of a List is the first candidate for a match.
package storage
