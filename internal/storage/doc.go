// Package storage persists a compact record of every rendered frame.
//
// Drivers:
//   - "file": JSON Lines, one record per frame, recent tail kept in memory
//   - "sqlite": SQLite database file (pure Go driver)
package storage
