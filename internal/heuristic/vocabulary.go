package heuristic

// vocabulary is the fixed set of disallowed terms scanned on every
// submission. Matching is substring containment over the normalized text,
// so inflected forms ("idiots") hit their root term.
var vocabulary = []string{
	"idiot",
	"idiota",
	"imbecile",
	"moron",
	"cretin",
	"stupid",
	"dumbass",
	"loser",
	"trash human",
	"garbage person",
	"pathetic",
	"worthless",
	"disgusting",
	"shut up",
	"nobody likes you",
	"hate you",
	"scum",
	"vermin",
	"kill yourself",
	"kys",
	"go die",
	"drop dead",
}

// highSeverity marks the vocabulary subset that escalates the base score.
var highSeverity = map[string]bool{
	"scum":          true,
	"vermin":        true,
	"kill yourself": true,
	"kys":           true,
	"go die":        true,
	"drop dead":     true,
}
