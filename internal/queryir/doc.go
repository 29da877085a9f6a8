// Package queryir provides the small relational intermediate representation
// that tag searches are assembled in before being rendered to SQL.
//
// The builder in package querysql never splices SQL strings directly. It
// produces a Select value, and that value is validated and then compiled:
//
//	[tag.Search + schema.Object] → [queryir.Select] → [SQL text + params]
//
// The two relational operations a tag search needs stay separately visible
// in the IR:
//   - Intersection ("has all of"): one Join per included tag, each a fresh
//     alias of tag_assignments, combined with an Equals on that alias
//   - Exclusion ("has none of"): a single NotExists whose subquery filters
//     with one In over all excluded ids, whatever the set size
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker method pattern so that only types in
// this package implement them. Backends can switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case In:
//	case FieldEquals:
//	case NotExists:
//	}
//
// All literal values are int64 tag ids. Backends bind them as parameters.
package queryir
