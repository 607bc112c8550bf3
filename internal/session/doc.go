// package session holds the client-side state between the store and the
// presentation layers.
//
// Controller projects store snapshots into a filtered, newest-first song
// view, tracks selection and playback, keeps an optimistic local credit
// balance, and translates user intents (generate, extend, cover, persona,
// delete, like, rename) into gateway and store calls.
package session
