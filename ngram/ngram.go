package ngram

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

const maxWordSize = 1024 * 1024

type Count struct {
	Gram  string `json:"gram"`
	Count int    `json:"count"`
}

type Options struct {
	// A word equal to Boundary ends the current word sequence, no n-gram
	// spans it. Empty disables boundaries.
	Boundary string

	IgnoreCase bool
}

type Counter struct {
	opts Options

	bigrams  map[string]int
	trigrams map[string]int

	words int

	prev [2]string
	run  int
}

func NewCounter(opts Options) *Counter {
	return &Counter{
		opts:     opts,
		bigrams:  make(map[string]int),
		trigrams: make(map[string]int),
	}
}

func (c *Counter) Add(word string) {
	if c.opts.Boundary != "" && word == c.opts.Boundary {
		c.run = 0
		return
	}
	word = stripPunct(word)
	if word == "" {
		return
	}
	if c.opts.IgnoreCase {
		word = strings.ToLower(word)
	}

	if c.run >= 1 {
		c.bigrams[c.prev[1]+" "+word]++
	}
	if c.run >= 2 {
		c.trigrams[c.prev[0]+" "+c.prev[1]+" "+word]++
	}
	c.prev[0], c.prev[1] = c.prev[1], word
	c.run++
	c.words++
}

func (c *Counter) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxWordSize)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		c.Add(scanner.Text())
	}
	return scanner.Err()
}

func (c *Counter) ReadFile(fs afero.Fs, path string) error {
	file, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer file.Close()

	err = c.Read(file)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	return nil
}

func (c *Counter) Words() int {
	return c.words
}

func (c *Counter) Bigrams() []Count {
	return sortCounts(c.bigrams)
}

func (c *Counter) Trigrams() []Count {
	return sortCounts(c.trigrams)
}

// Top returns the first n counts, all of them when n <= 0.
func Top(counts []Count, n int) []Count {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}

func sortCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for gram, count := range m {
		counts = append(counts, Count{Gram: gram, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Gram < counts[j].Gram
	})
	return counts
}

func stripPunct(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, word)
}
