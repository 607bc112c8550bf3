// Package models defines domain entities for the sunwave generation client.
//
// The package contains three categories of types:
//
// 1. The record model:
//   - [Song] : One track record, keyed by a provider-issued id or a local provisional id
//   - [Status] : The five-value lifecycle vocabulary with its merge lattice
//   - [SongType] : original vs. cover
//
// 2. Request objects for the provider gateway:
//   - [GenerateRequest] : New generation (custom or simple mode)
//   - [ExtendRequest] : Continue an existing song
//   - [CoverRequest] : Cover previously uploaded audio
//   - [PersonaRequest] : Derive a reusable voice persona
//
// 3. Catalog data: [KnownModels] lists the selectable model versions.
//
// Status transitions are one-directional. [MergeStatus] encodes the lattice
// queue → submitted → streaming → complete (error terminal, ranked above
// all), so redelivered stale statuses never regress a record. Record identity
// is the tagged [RecordID], either a local placeholder or a provider id, with
// [ProvisionalPrefix] appearing only in its storage form; consumers go through
// [RecordID], [IsProvisional] and [ProvisionalID] rather than inspecting ids
// directly.
package models
