// Package chatinput scans chat input text for agent, slash-command and
// variable tokens, computes completions for the token under the cursor, and
// keeps inserted dynamic references aligned with later edits.
//
// All offsets are byte offsets into the input string.
package chatinput
