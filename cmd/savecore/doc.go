// Package main provides the entry point for savecore.
//
// savecore is the save integrity and migration tool for Sawyer's RPG.
// It verifies, repairs, migrates, and syncs local save slots.
package main
