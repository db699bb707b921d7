// Package models defines the typed records stored in the backing tables and
// their bindings to the tables' header columns.
//
// Each FromTable function checks that the columns it needs are present and
// fails with common.ErrNotFound naming the first absent one, so a renamed
// column surfaces at the adapter boundary instead of as silently empty
// fields.
package models
