package model

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/mikey/spamguard/internal/core"
)

// tokenPattern selects runs of two or more word characters
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// CountVectorizer maps text to term counts over a fixed vocabulary,
// optionally re-weighted by inverse document frequency.
type CountVectorizer struct {
	Vocabulary  map[string]int `yaml:"vocabulary"`
	NGramMin    int            `yaml:"ngram_min"`
	NGramMax    int            `yaml:"ngram_max"`
	Binary      bool           `yaml:"binary"`
	IDF         []float64      `yaml:"idf"`
	SublinearTF bool           `yaml:"sublinear_tf"`
	Norm        string         `yaml:"norm"`
}

var _ core.Vectorizer = (*CountVectorizer)(nil)

// Dim returns the vocabulary size
func (v *CountVectorizer) Dim() int {
	return len(v.Vocabulary)
}

// Validate checks that the vocabulary indices and weights describe one feature space
func (v *CountVectorizer) Validate() error {
	n := len(v.Vocabulary)
	if n == 0 {
		return errors.New("vectorizer: empty vocabulary")
	}

	seen := make([]bool, n)
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= n {
			return fmt.Errorf("vectorizer: index %d for %q out of range [0,%d)", idx, term, n)
		}
		if seen[idx] {
			return fmt.Errorf("vectorizer: index %d assigned twice", idx)
		}
		seen[idx] = true
	}

	if len(v.IDF) != 0 && len(v.IDF) != n {
		return fmt.Errorf("vectorizer: %d idf weights for %d terms", len(v.IDF), n)
	}

	lo, hi := v.ngramRange()
	if lo < 1 || hi < lo {
		return fmt.Errorf("vectorizer: invalid n-gram range (%d, %d)", lo, hi)
	}

	switch v.Norm {
	case "", "l1", "l2":
	default:
		return fmt.Errorf("vectorizer: unsupported norm %q", v.Norm)
	}

	return nil
}

func (v *CountVectorizer) ngramRange() (int, int) {
	lo, hi := v.NGramMin, v.NGramMax
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = lo
	}
	return lo, hi
}

// Transform converts one normalized document into a feature vector.
// Terms outside the vocabulary are ignored.
func (v *CountVectorizer) Transform(text string) (core.FeatureVector, error) {
	if len(v.Vocabulary) == 0 {
		return nil, errors.New("vectorizer: empty vocabulary")
	}

	vec := make(core.FeatureVector, len(v.Vocabulary))
	tokens := tokenPattern.FindAllString(text, -1)
	lo, hi := v.ngramRange()

	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := v.Vocabulary[term]; ok {
				vec[idx]++
			}
		}
	}

	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		switch {
		case v.Binary:
			tf = 1
		case v.SublinearTF:
			tf = 1 + math.Log(tf)
		}
		if len(v.IDF) > 0 {
			tf *= v.IDF[i]
		}
		vec[i] = tf
	}

	normalize(vec, v.Norm)
	return vec, nil
}

func normalize(vec core.FeatureVector, norm string) {
	var total float64
	switch norm {
	case "l1":
		for _, x := range vec {
			total += math.Abs(x)
		}
	case "l2":
		for _, x := range vec {
			total += x * x
		}
		total = math.Sqrt(total)
	default:
		return
	}

	if total == 0 {
		return
	}
	for i := range vec {
		vec[i] /= total
	}
}
