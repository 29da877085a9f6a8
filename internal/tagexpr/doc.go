// Package tagexpr parses the command-line search language into tag criteria.
//
// An expression is a conjunction of tag names, each optionally negated:
//
//	rock && live && !bootleg
//
// Disjunction and grouping are not supported. A search holds one include set
// and one exclude set, and those cannot represent "a || b".
package tagexpr
