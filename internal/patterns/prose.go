package patterns

import (
	"strings"
	"unicode"
)

var (
	articles = map[string]bool{"a": true, "an": true, "the": true}

	conjunctions = map[string]bool{
		"and": true, "or": true, "but": true, "so": true, "because": true,
		"although": true, "while": true, "if": true, "when": true, "which": true,
		"that": true,
	}

	finiteVerbs = map[string]bool{
		"is": true, "are": true, "was": true, "were": true, "be": true,
		"been": true, "has": true, "have": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "can": true,
		"could": true, "should": true, "may": true, "might": true, "must": true,
		"shall": true, "seems": true, "feels": true, "appears": true,
		"describes": true, "provides": true, "includes": true, "contains": true,
	}

	pronouns = map[string]bool{
		"i": true, "you": true, "he": true, "she": true, "it": true, "we": true,
		"they": true, "me": true, "him": true, "her": true, "us": true,
		"them": true, "this": true, "these": true, "those": true, "my": true,
		"your": true, "our": true, "their": true, "its": true,
	}
)

type wordClasses struct {
	total, articles, conjunctions, verbs, pronouns int
}

func countClasses(words []string) wordClasses {
	var c wordClasses
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		}))
		if w == "" {
			continue
		}
		c.total++
		switch {
		case articles[w]:
			c.articles++
		case conjunctions[w]:
			c.conjunctions++
		case finiteVerbs[w]:
			c.verbs++
		case pronouns[w]:
			c.pronouns++
		}
	}
	return c
}

// ProseDensity returns the fraction of words in text that are articles,
// finite verbs, pronouns or conjunctions. Headings score near zero, running
// sentences well above a third.
func ProseDensity(text string) float64 {
	c := countClasses(strings.Fields(text))
	if c.total == 0 {
		return 0
	}
	return float64(c.articles+c.conjunctions+c.verbs+c.pronouns) / float64(c.total)
}
