// Package capability decides which report tools can run in a given
// environment and which result entities each one may operate on.
//
// A tool declares its requirements in a ToolConfig: the record formats it
// accepts, the entity classes it targets, the data-model fields it depends
// on, and the tool API version it was built against. The environment
// supplies the data model, the candidate entities keyed by class, and the
// service release. SuitableEntities is the single decision point; its
// absent result is the designed "cannot run here" signal, an ordinary
// outcome rather than an error.
//
// Everything here is pure: no I/O, no shared state, no mutation of inputs.
// Concurrent callers need no coordination.
package capability
