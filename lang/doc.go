// Package lang reads data files written in a restricted subset of Lua, such as
// the mission, dictionary and mapResource files inside a DCS World mission
// archive, and evaluates them into a [Namespace] of plain values.
//
// # Pipeline
//
// Source text is parsed by a hand-written lexer and recursive descent parser
// covering the full Lua 5.4 grammar ([Parse]). The resulting [Chunk] is then
// walked statement by statement ([Evaluate]). [LoadString] and [LoadReader]
// do both.
//
// # Supported subset
//
// Only top-level assignments to plain names are evaluated:
//
//	mission = {
//	    ["theatre"] = "Caucasus",
//	    ["date"] = { ["Year"] = 2011, ["Month"] = 6 },
//	    "first", "second",
//	}
//	c = 25
//	f = c * 9 / 5 + 32 -- 77.0
//
// Every other statement (functions, local declarations, loops, calls,
// return) is parsed and skipped. Expressions are limited to nil, booleans,
// decimal numbers, quoted strings, table constructors, variable references,
// parentheses, unary minus and the binary operators + - * /. Anything else
// fails with one of the Err* kinds, matched with [errors.Is].
//
// # Table constructors
//
// Positional fields are stored at an implicit counter starting at 1. A
// bracketed field whose key is an integer the counter has already passed is
// discarded, so
//
//	{[0]="ape", "banana", "cantaloupe", [0]="ant", [1]="bat", [2]="cat", "date"}
//
// yields {[0]="ant", [1]="banana", [2]="cantaloupe", [3]="date"}. Named
// fields (name = exp) are not supported.
//
// # Output
//
// A namespace can be written back in the same subset ([Namespace.Format]), as
// JSON or YAML, or queried with expr-lang expressions ([Namespace.Query]).
package lang
