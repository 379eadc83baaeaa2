// Package schema validates Wexpr expression trees against schema documents
// that are themselves written in Wexpr.
//
// A schema document is a map with $types declaring named validation rules
// and a rootType naming the rule applied to a document's root expression:
//
//	@(
//		$schema "https://wexpr.hackerguild.com/versions/1.schema.wexpr"
//		$id "https://example.com/person.schema.wexpr"
//		$types @(
//			identifier @(
//				primitiveType value
//				valueRegex "[A-Za-z_][A-Za-z0-9_]*"
//			)
//			person @(
//				primitiveType map
//				mapProperties @(
//					name @(type identifier)
//					nickname @(type identifier optional true)
//				)
//			)
//		)
//		rootType person
//	)
//
// Load a schema with [Load] and check documents with
// [Schema.ValidateExpression]. Validation failures are [*Error] chains: a
// type whose "type" list names several alternatives reports why every
// alternative failed, and each failure carries the /-separated object path
// of the offending expression.
package schema
