// Package review holds the session state machine for one loaded dataset:
// ordered records, cyclic cursor navigation, and the SQLite-backed
// annotation store that lives and dies with the session.
package review
