// Package store persists local snapshots of the account's following list.
// A snapshot is a single JSON file written atomically; timestamped backups
// are kept alongside it and pruned to a configured count.
package store
