package suggest

import (
	"math"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// sparseVector holds term indices in ascending order with their weights.
type sparseVector struct {
	idx []int
	val []float64
}

func (v sparseVector) dot(o sparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.idx) && j < len(o.idx) {
		switch {
		case v.idx[i] == o.idx[j]:
			sum += v.val[i] * o.val[j]
			i++
			j++
		case v.idx[i] < o.idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

func (v sparseVector) empty() bool { return len(v.idx) == 0 }

func descriptionTerms(text string) []string {
	lower := cases.Lower(language.Und)
	var terms []string
	for _, tok := range termPattern.FindAllString(lower.String(text), -1) {
		if _, stop := englishStopWords[tok]; !stop {
			terms = append(terms, tok)
		}
	}
	return terms
}

// tfidf vectorizes docs with raw term counts weighted by the smoothed inverse
// document frequency ln((1+n)/(1+df)) + 1, each row normalised to unit length.
func tfidf(docs []string) []sparseVector {
	n := len(docs)
	counts := make([]map[string]int, n)
	df := map[string]int{}
	for i, d := range docs {
		counts[i] = map[string]int{}
		for _, term := range descriptionTerms(d) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
		}
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		index[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	vectors := make([]sparseVector, n)
	for i, c := range counts {
		v := sparseVector{idx: make([]int, 0, len(c)), val: make([]float64, 0, len(c))}
		for term := range c {
			v.idx = append(v.idx, index[term])
		}
		sort.Ints(v.idx)

		var norm float64
		for _, k := range v.idx {
			w := float64(c[vocab[k]]) * idf[k]
			v.val = append(v.val, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range v.val {
				v.val[k] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// cosineDistances returns the n×n matrix of 1 − cosine similarity. Vectors are
// unit length so similarity is the dot product.
func cosineDistances(vectors []sparseVector) [][]float64 {
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 1.0
			if !vectors[i].empty() && !vectors[j].empty() {
				d = math.Max(0, 1-vectors[i].dot(vectors[j]))
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}
