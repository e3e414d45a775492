package suggest

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"taskhub-backend/internal/tasks"
)

// Tokenizer splits text on whitespace. Punctuation is kept attached to the
// word. Tokens are lowercased unless CaseSensitive is set.
type Tokenizer struct {
	CaseSensitive bool
}

func (tk Tokenizer) Tokens(text string) []string {
	fields := strings.Fields(text)
	if tk.CaseSensitive {
		return fields
	}
	// a Caser is stateful, so one per call
	lower := cases.Lower(language.Und)
	for i, f := range fields {
		fields[i] = lower.String(f)
	}
	return fields
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequencyTable counts tokens and remembers the order in which each
// token was first seen.
type WordFrequencyTable struct {
	counts map[string]int
	order  []string
}

func NewWordFrequencyTable() *WordFrequencyTable {
	return &WordFrequencyTable{counts: map[string]int{}}
}

func (t *WordFrequencyTable) Add(word string) {
	if _, seen := t.counts[word]; !seen {
		t.order = append(t.order, word)
	}
	t.counts[word]++
}

func (t *WordFrequencyTable) Count(word string) int { return t.counts[word] }

// Len is the number of distinct tokens.
func (t *WordFrequencyTable) Len() int { return len(t.order) }

// Total is the number of tokens counted.
func (t *WordFrequencyTable) Total() int {
	n := 0
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Top returns the n most frequent words. Ties keep first-seen order.
func (t *WordFrequencyTable) Top(n int) []WordCount {
	all := make([]WordCount, len(t.order))
	for i, w := range t.order {
		all[i] = WordCount{Word: w, Count: t.counts[w]}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Count > all[j].Count })
	if n < len(all) {
		all = all[:n]
	}
	return all
}

type AdjacencyPair struct {
	Title   string
	Related string
}

// CompletionAdjacencyMap maps a completed task title to the titles it is
// considered related to. Iteration order is insertion order.
type CompletionAdjacencyMap struct {
	titles  []string
	related map[string][]string
	seen    map[AdjacencyPair]struct{}
}

func NewCompletionAdjacencyMap() *CompletionAdjacencyMap {
	return &CompletionAdjacencyMap{
		related: map[string][]string{},
		seen:    map[AdjacencyPair]struct{}{},
	}
}

// AddTitle registers a title with no relations yet.
func (m *CompletionAdjacencyMap) AddTitle(title string) {
	if _, ok := m.related[title]; ok {
		return
	}
	m.titles = append(m.titles, title)
	m.related[title] = []string{}
}

// Relate records that related is associated with title. Self relations and
// duplicates are ignored.
func (m *CompletionAdjacencyMap) Relate(title, related string) {
	if title == related {
		return
	}
	p := AdjacencyPair{Title: title, Related: related}
	if _, dup := m.seen[p]; dup {
		return
	}
	m.AddTitle(title)
	m.seen[p] = struct{}{}
	m.related[title] = append(m.related[title], related)
}

func (m *CompletionAdjacencyMap) Len() int { return len(m.titles) }

func (m *CompletionAdjacencyMap) Titles() []string {
	return append([]string(nil), m.titles...)
}

func (m *CompletionAdjacencyMap) Related(title string) []string {
	return append([]string(nil), m.related[title]...)
}

// Pairs flattens the map into (title, related) pairs in insertion order.
func (m *CompletionAdjacencyMap) Pairs() []AdjacencyPair {
	pairs := make([]AdjacencyPair, 0, len(m.seen))
	for _, t := range m.titles {
		for _, r := range m.related[t] {
			pairs = append(pairs, AdjacencyPair{Title: t, Related: r})
		}
	}
	return pairs
}

// AdjacencyStrategy decides which completed tasks are related to each other.
type AdjacencyStrategy interface {
	Build(snapshot []tasks.Task) *CompletionAdjacencyMap
}

// CompleteGraphAdjacency relates every distinct completed title to every
// other distinct completed title.
type CompleteGraphAdjacency struct{}

func (CompleteGraphAdjacency) Build(snapshot []tasks.Task) *CompletionAdjacencyMap {
	var completed []string
	have := map[string]bool{}
	for _, t := range snapshot {
		if t.Completed() && !have[t.Title] {
			have[t.Title] = true
			completed = append(completed, t.Title)
		}
	}

	m := NewCompletionAdjacencyMap()
	for _, title := range completed {
		m.AddTitle(title)
		for _, other := range completed {
			m.Relate(title, other)
		}
	}
	return m
}

// LexicalAnalyzer derives word frequencies and completion adjacency from a
// snapshot.
type LexicalAnalyzer struct {
	Tokenizer Tokenizer
	Adjacency AdjacencyStrategy
}

// Analyze counts tokens over all titles followed by all descriptions.
func (a LexicalAnalyzer) Analyze(snapshot []tasks.Task) (*WordFrequencyTable, *CompletionAdjacencyMap) {
	table := NewWordFrequencyTable()
	for _, t := range snapshot {
		for _, w := range a.Tokenizer.Tokens(t.Title) {
			table.Add(w)
		}
	}
	for _, t := range snapshot {
		for _, w := range a.Tokenizer.Tokens(t.Description) {
			table.Add(w)
		}
	}

	strategy := a.Adjacency
	if strategy == nil {
		strategy = CompleteGraphAdjacency{}
	}
	return table, strategy.Build(snapshot)
}
