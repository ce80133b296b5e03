// Package catalog loads slash-command definitions from a directory and
// exposes them in yield order.
//
// A catalog directory may hold CUE files, YAML files, or both. CUE files are
// loaded as a single instance and contribute every field of the top-level
// `command` struct:
//
//	command: fix: {
//		description: "Propose a fix for the selection"
//		yields_to: ["explain"]
//	}
//
// YAML files contribute a `commands` list with the same fields plus `name`.
// CUE definitions come first, followed by YAML files in lexical order; that
// combined order is the input order handed to precedence.Sort.
package catalog
