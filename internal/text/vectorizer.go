package text

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/polarity/internal/model"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptyVocabulary is returned when no term survives the document-frequency cut
var ErrEmptyVocabulary = errors.New("empty vocabulary: every term was filtered out")

// Vectorizer turns documents into a document-term matrix
type Vectorizer interface {
	Fit(docs []string) error
	Transform(docs []string) *Sparse
	FitTransform(docs []string) (*Sparse, error)
	FeatureNames() []string
	VocabularySize() int
}

// Options configure vocabulary building
type Options struct {
	MinDF    int // Terms in fewer documents are dropped
	NGramMin int
	NGramMax int
}

// New builds the vectorizer named by kind
func New(kind model.VectorizerKind, opts Options) (Vectorizer, error) {
	switch kind {
	case model.VectorizerCount:
		return NewCountVectorizer(opts), nil
	case model.VectorizerTfidf:
		return NewTfidfVectorizer(opts), nil
	default:
		return nil, fmt.Errorf("unknown vectorizer: %s", kind)
	}
}

// CountVectorizer produces raw term counts over a learned vocabulary
type CountVectorizer struct {
	opts     Options
	vocab    map[string]int
	features []string
}

// NewCountVectorizer creates an unfitted count vectorizer
func NewCountVectorizer(opts Options) *CountVectorizer {
	if opts.NGramMin < 1 {
		opts.NGramMin = 1
	}
	if opts.NGramMax < opts.NGramMin {
		opts.NGramMax = opts.NGramMin
	}
	return &CountVectorizer{opts: opts}
}

// Fit learns the vocabulary: every n-gram seen in at least MinDF documents, sorted
func (v *CountVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("fit vectorizer: no documents")
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Analyze(doc, v.opts.NGramMin, v.opts.NGramMax) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	features := make([]string, 0, len(df))
	for term, n := range df {
		if n >= v.opts.MinDF {
			features = append(features, term)
		}
	}
	if len(features) == 0 {
		return ErrEmptyVocabulary
	}
	sort.Strings(features)

	v.features = features
	v.vocab = make(map[string]int, len(features))
	for i, term := range features {
		v.vocab[term] = i
	}
	return nil
}

// Transform counts vocabulary terms per document; unknown terms are ignored
func (v *CountVectorizer) Transform(docs []string) *Sparse {
	b := newSparseBuilder(len(docs), len(v.features))
	for _, doc := range docs {
		counts := make(map[int]float64)
		for _, term := range Analyze(doc, v.opts.NGramMin, v.opts.NGramMax) {
			if idx, ok := v.vocab[term]; ok {
				counts[idx]++
			}
		}

		cols := make([]int, 0, len(counts))
		for idx := range counts {
			cols = append(cols, idx)
		}
		sort.Ints(cols)

		vals := make([]float64, len(cols))
		for k, idx := range cols {
			vals[k] = counts[idx]
		}
		b.addRow(cols, vals)
	}
	return b.build()
}

// FitTransform fits on docs and returns their matrix
func (v *CountVectorizer) FitTransform(docs []string) (*Sparse, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs), nil
}

// FeatureNames returns the vocabulary in column order
func (v *CountVectorizer) FeatureNames() []string {
	return v.features
}

// VocabularySize returns the number of columns
func (v *CountVectorizer) VocabularySize() int {
	return len(v.features)
}

// TfidfVectorizer weights counts by smoothed inverse document frequency and L2-normalizes rows
type TfidfVectorizer struct {
	counts *CountVectorizer
	idf    []float64
}

// NewTfidfVectorizer creates an unfitted TF-IDF vectorizer
func NewTfidfVectorizer(opts Options) *TfidfVectorizer {
	return &TfidfVectorizer{counts: NewCountVectorizer(opts)}
}

// Fit learns the vocabulary and idf = ln((1+n)/(1+df)) + 1
func (v *TfidfVectorizer) Fit(docs []string) error {
	_, err := v.FitTransform(docs)
	return err
}

// FitTransform fits on docs and returns their weighted matrix
func (v *TfidfVectorizer) FitTransform(docs []string) (*Sparse, error) {
	m, err := v.counts.FitTransform(docs)
	if err != nil {
		return nil, err
	}

	df := make([]float64, m.Cols)
	for _, c := range m.ColIdx {
		df[c]++
	}
	n := float64(m.Rows)
	v.idf = make([]float64, m.Cols)
	for c := range df {
		v.idf[c] = math.Log((1+n)/(1+df[c])) + 1
	}

	v.weigh(m)
	return m, nil
}

// Transform weighs counts with the fitted idf
func (v *TfidfVectorizer) Transform(docs []string) *Sparse {
	m := v.counts.Transform(docs)
	v.weigh(m)
	return m
}

// IDF returns the learned inverse document frequencies in column order
func (v *TfidfVectorizer) IDF() []float64 {
	return v.idf
}

// FeatureNames returns the vocabulary in column order
func (v *TfidfVectorizer) FeatureNames() []string {
	return v.counts.FeatureNames()
}

// VocabularySize returns the number of columns
func (v *TfidfVectorizer) VocabularySize() int {
	return v.counts.VocabularySize()
}

func (v *TfidfVectorizer) weigh(m *Sparse) {
	for i := 0; i < m.Rows; i++ {
		cols, vals := m.Row(i)
		for k, c := range cols {
			vals[k] *= v.idf[c]
		}
		if norm := floats.Norm(vals, 2); norm > 0 {
			floats.Scale(1/norm, vals)
		}
	}
}
