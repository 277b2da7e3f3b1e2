// Package memory provides minimal session transcript persistence.
//
// Persistence model:
//   - Only text entries are stored (role + text). Screenshots, call payloads,
//     and safety-check traffic are transient.
//   - Keeping initial storage simple for now; to be extended.
package memory
