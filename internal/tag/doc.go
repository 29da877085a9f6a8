// Package tag defines the value types shared by the tag store, the search
// query builder and the CLI.
//
// A Tag is an immutable (id, name) pair. Renaming produces a new value; the
// old one is stale and should be discarded by the holder.
//
// A tag assignment has no type of its own. It is the (tag_id, object_id) edge
// stored in the tag_assignments table, addressed through a Tag and a Taggable.
//
// A Search accumulates the criteria for one query:
//   - Included tags: an object must carry every one of them (intersection)
//   - Excluded tags: an object must carry none of them
//
// Insertion order only affects the shape of the generated SQL (join aliases
// and parameter order), never the result set.
package tag
