// Package moderation decides whether user supplied text violates the
// content policy
package moderation

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	goaway "github.com/TwiN/go-away"
)

type Verdict int

const (
	Clean Verdict = iota
	Profane
)

func (v Verdict) String() string {
	if v == Profane {
		return "profane"
	}

	return "clean"
}

// Gate is built once at startup and is safe for concurrent use
type Gate struct {
	detector *goaway.ProfanityDetector
}

// New builds a gate on top of the default dictionary plus any extra words
func New(extra ...string) *Gate {
	d := goaway.NewProfanityDetector().WithSanitizeSpaces(false)

	words := normalize(extra)
	if len(words) > 0 {
		d = d.WithCustomDictionary(
			slices.Concat(goaway.DefaultProfanities, words),
			goaway.DefaultFalsePositives,
			goaway.DefaultFalseNegatives,
		)
	}

	return &Gate{detector: d}
}

// NewFromFile is like New but also reads one word per line from path.
// Empty lines and lines starting with # are skipped.
func NewFromFile(path string, extra ...string) (*Gate, error) {
	if path == "" {
		return New(extra...), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open moderation word list, %w", err)
	}
	defer f.Close()

	words := slices.Clone(extra)

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		words = append(words, line)
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read moderation word list, %w", err)
	}

	return New(words...), nil
}

// Check returns Profane if any of the texts trips the filter
func (g *Gate) Check(texts ...string) Verdict {
	for _, t := range texts {
		if t == "" {
			continue
		}

		if g.detector.IsProfane(t) {
			return Profane
		}
	}

	return Clean
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}

	return out
}
