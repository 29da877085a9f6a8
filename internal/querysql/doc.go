// Package querysql builds and renders the SQL behind tag searches.
//
// BuildSearch and BuildUntagged turn a schema.Object and a tag.Search into a
// queryir.Select; Compiler renders that Select to SQLite text plus bound
// parameters.
//
// Search shape for included tags A, B and excluded tags C, D:
//
//	SELECT o.<cols> FROM tag_assignments AS ta
//	INNER JOIN tag_assignments AS t0 ON ta.object_id = t0.object_id
//	INNER JOIN tag_assignments AS t1 ON ta.object_id = t1.object_id
//	INNER JOIN <table> AS o ON o.<id> = ta.object_id
//	WHERE t0.tag_id = ? AND t1.tag_id = ?
//	AND NOT EXISTS (SELECT 1 FROM tag_assignments AS ex
//	                WHERE ex.object_id = o.<id> AND ex.tag_id IN (?, ?))
//	GROUP BY o.<groupBy> ORDER BY o.<orderBy>
//
// One join per included tag gives "has all of". A single tag_id IN (...)
// join would give "has any of", which is a different query.
//
// Table and column names are inlined; they come from a validated
// schema.Object and are re-checked by queryir.Validate. Tag ids are always
// bound as parameters, in predicate order.
package querysql
