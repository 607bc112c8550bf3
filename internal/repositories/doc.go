// Package repositories implements SQLite persistence for song records plus the change-notification layer over it.
//
// Key Implementations:
//   - [SongRepository] : CRUD over the songs table with merge-upsert semantics
//     (a Put never clobbers the independently managed like flag), whitelisted
//     partial patches, and batch deletion of a task's provisional records
//   - [Store] : wraps the repository with subscriptions; every successful
//     mutation fans the full ordered collection (newest-first) out to
//     subscribers, mirroring a real-time document store
//
// A Store without a repository is "unconfigured": writes silently no-op and
// subscribers see an empty snapshot. The engine above must keep functioning
// in that mode, so nothing in this package ever panics on missing
// persistence.
package repositories
