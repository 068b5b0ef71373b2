// package bids models the directory and filename conventions of a BIDS
// derivatives tree: subject and session discovery, run entities, and the
// motion-table naming patterns this tool rewrites.
package bids

import "strings"

// Pattern is one filename rewrite: motion tables whose name ends in
// InputSuffix are projected and rewritten under OutputSuffix.
type Pattern struct {
	Label        string
	InputSuffix  string
	OutputSuffix string
}

// patterns lists every rewrite the pipeline applies. Both are attempted
// independently for each run; order only affects log ordering.
var patterns = []Pattern{
	{
		Label:        "filtered including FD -> filtered",
		InputSuffix:  "_desc-filteredincludingFD_motion.tsv",
		OutputSuffix: "_desc-filtered_motion.tsv",
	},
	{
		Label:        "including FD -> motion",
		InputSuffix:  "_desc-includingFD_motion.tsv",
		OutputSuffix: "_motion.tsv",
	},
}

// Patterns returns the filename rewrites in evaluation order.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// DepadRun strips the zero pad from a run entity for output filenames.
// The replacement is a literal, first-occurrence substitution of "run-0"
// with "run-": run-01 becomes run-1, run-10 is unchanged, run-00 becomes
// run-0. Downstream filenames depend on these exact results, edge cases
// included, so this must stay a string replace rather than a numeric
// reformat.
func DepadRun(run string) string {
	return strings.Replace(run, "run-0", "run-", 1)
}
