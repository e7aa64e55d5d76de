package haiku

// exceptions maps words whose pronunciation the rules below get wrong, mostly chat abbreviations, straight
// to their syllable count.
var exceptions = map[string]int{
	"ok":      2,
	"bbq":     3,
	"uq":      2,
	"uqcs":    4,
	"btw":     3,
	"omg":     3,
	"idk":     3,
	"tbh":     3,
	"imo":     3,
	"imho":    4,
	"irl":     3,
	"brb":     3,
	"smh":     3,
	"ftw":     3,
	"hmu":     3,
	"gg":      2,
	"lol":     1,
	"lmao":    2,
	"maybe":   2,
	"argue":   2,
	"create":  2,
	"idea":    3,
	"area":    3,
	"react":   2,
	"science": 2,
	"quiet":   2,
	"naive":   2,
	"recipe":  3,
	"video":   3,
	"radio":   3,
}

// noChangeSuffixes are stripped in order, outermost first. Each contributes its own vowel groups and nothing
// more.
var noChangeSuffixes = []string{
	"ly",
	"ness", "nesses",
	"ment", "ments",
	"ship", "ships",
	"less",
	"ful", "fuls",
	"ist", "ists",
	"ish",
	"ing", "ings",
}

// addingSuffixes are pronounced with one more syllable than their vowel groups suggest.
var addingSuffixes = []string{
	"ism", "isms",
}

var extraPrefixes = []string{
	"triang", "trio", "triu",
	"bio", "bia",
	"coop", "coord", "coe",
	"preo", "prei", "preex",
	"poe",
	"cereal", "boreal",
	"didnt", "couldnt", "wouldnt", "shouldnt", "isnt", "wasnt", "hasnt", "hadnt", "doesnt", "mustnt", "neednt",
}

var lessPrefixes = []string{
	"whitespace", "whiteboard",
	"every",
	"somet", "somew", "someo", "someb",
	"homew", "homep", "homet",
	"lifet",
	"lovecraft",
}

var extraSuffixes = []string{
	"le",
	"ian",
	"bial", "rial", "nial",
	"uate", "iate",
	"ual",
	"rior",
}

// lessSuffixes also cancel "le" from extraSuffixes when a vowel precedes the silent e.
var lessSuffixes = []string{
	"ale", "ele", "ile", "ole", "ule", "yle",
	"cian", "tian",
	"quate",
	"qual",
	"gue",
	"ville",
	"isle",
}
