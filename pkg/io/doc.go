// Package io reads and writes problem instances and orderings.
//
// # Text Format
//
// An instance file holds the number of items n on the first line, the
// number of constraints k on the second, then k lines of three
// whitespace-separated identifiers "A B C", meaning C must not lie between
// A and B:
//
//	4
//	2
//	0 2 1
//	1 3 2
//
// Identifiers are either all integers in [0, n), used as item indices
// directly, or arbitrary names without whitespace. Names are assigned
// indices in order of first appearance and must number exactly n.
//
// Use [ReadInstance] or [ImportInstance] to parse and [WriteInstance] or
// [ExportInstance] to write. Parsing fails on the first malformed line with
// an INVALID_FORMAT or INVALID_INPUT error naming the line.
//
// # JSON Format
//
// The same instance as JSON, for tooling:
//
//	{
//	  "items": ["0", "1", "2", "3"],
//	  "constraints": [["0", "2", "1"], ["1", "3", "2"]]
//	}
//
// See [ReadJSON] and [WriteJSON].
//
// # Orderings
//
// A solution is the n identifiers in order, one per line by default
// ([FormatNewline]) or on one line separated by spaces ([FormatSpace]).
// [ReadOrdering] accepts either layout.
package io
