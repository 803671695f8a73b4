// Package search provides a small, deterministic, concurrency-safe in-memory
// keyword index over skill listings.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Deterministic scoring and ordering (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// document's token set: score = |Q ∩ D| / |Q ∪ D|.
package search

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Result is a matching document with its similarity score.
type Result struct {
	ID    string
	Score float64
}

// Document is one indexable item: an identifier and its searchable text.
type Document struct {
	ID   string
	Text string
}

// Option configures an Index.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	defaultK  int
}

func defaultConfig() config {
	return config{defaultK: 10}
}

// WithStopwords drops the given words from documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithDefaultK sets the result cap used when Search is called with k <= 0.
func WithDefaultK(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.defaultK = n
		}
	}
}

type doc struct {
	text   string
	tokens map[string]struct{}
}

// Index is a mutable keyword index keyed by document ID.
type Index struct {
	cfg  config
	mu   sync.RWMutex
	docs map[string]doc
}

// New returns an empty index.
func New(opts ...Option) *Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Index{cfg: cfg, docs: make(map[string]doc)}
}

// Put adds or replaces a document. Text with no indexable tokens removes it.
func (i *Index) Put(d Document) {
	t := strings.TrimSpace(normalizeWhitespace(d.Text))
	toks := tokenize(t, i.cfg.stopwords)

	i.mu.Lock()
	defer i.mu.Unlock()
	if len(toks) == 0 {
		delete(i.docs, d.ID)
		return
	}
	i.docs[d.ID] = doc{text: t, tokens: toks}
}

// Remove deletes a document; unknown IDs are ignored.
func (i *Index) Remove(id string) {
	i.mu.Lock()
	delete(i.docs, id)
	i.mu.Unlock()
}

// Replace swaps the whole corpus atomically.
func (i *Index) Replace(docs []Document) {
	next := make(map[string]doc, len(docs))
	for _, d := range docs {
		t := strings.TrimSpace(normalizeWhitespace(d.Text))
		if toks := tokenize(t, i.cfg.stopwords); len(toks) > 0 {
			next[d.ID] = doc{text: t, tokens: toks}
		}
	}
	i.mu.Lock()
	i.docs = next
	i.mu.Unlock()
}

// Len returns the number of indexed documents.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Search returns up to k best-matching document IDs by Jaccard similarity.
// Ties are broken by shorter text, then by ID.
func (i *Index) Search(q string, k int) []Result {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = i.cfg.defaultK
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		id      string
		score   float64
		textLen int
	}

	i.mu.RLock()
	buf := make([]scored, 0, len(i.docs))
	for id, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		buf = append(buf, scored{id: id, score: float64(over) / union, textLen: len(d.text)})
	}
	i.mu.RUnlock()

	if len(buf) == 0 {
		return nil
	}
	sort.Slice(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].textLen != buf[b].textLen {
			return buf[a].textLen < buf[b].textLen
		}
		return buf[a].id < buf[b].id
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{ID: buf[n].id, Score: buf[n].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
