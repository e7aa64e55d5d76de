// Command syllable-count measures how often the syllable estimate agrees with the CMU pronouncing dictionary.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/uqcs/haikubot/src/haiku"
)

func main() {
	var (
		filename = flag.StringP("dict", "d", "data/cmudict-0.7b.txt", "CMU pronouncing dictionary to compare against")
		misses   = flag.IntP("misses", "m", 20, "number of mismatched words to list")
	)
	flag.Parse()

	f, err := os.ReadFile(*filename)
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}
	entries := parseFile(f)
	compare(entries).Print(os.Stdout, *misses)
}

// Report summarises a comparison of estimates against dictionary counts.
type Report struct {
	Total   int
	Matched int
	Misses  []Miss
}

type Miss struct {
	Word     string
	Estimate int
	Expected []int
}

// compare counts the entries whose estimate matches one of their pronunciations. Misses are sorted by how far
// off the estimate was, worst first.
func compare(entries []Entry) Report {
	var report Report
	for _, entry := range entries {
		report.Total++
		estimate := haiku.EstimateSyllables(entry.word)
		if containsInt(entry.syllableCounts, estimate) {
			report.Matched++
			continue
		}
		report.Misses = append(report.Misses, Miss{entry.word, estimate, entry.syllableCounts})
	}
	sort.Slice(report.Misses, func(i, j int) bool {
		di, dj := report.Misses[i].distance(), report.Misses[j].distance()
		if di != dj {
			return di > dj
		}
		return report.Misses[i].Word < report.Misses[j].Word
	})
	return report
}

func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Total)
}

func (r Report) Print(w io.Writer, misses int) {
	fmt.Fprintf(w, "words:    %d\n", r.Total)
	fmt.Fprintf(w, "matched:  %d\n", r.Matched)
	fmt.Fprintf(w, "accuracy: %.2f%%\n", 100*r.Accuracy())
	if misses > len(r.Misses) {
		misses = len(r.Misses)
	}
	for _, miss := range r.Misses[:misses] {
		fmt.Fprintf(w, "%s estimated %d expected %s\n", miss.Word, miss.Estimate, joinInts(miss.Expected))
	}
}

// distance is how many syllables the estimate is from the nearest pronunciation.
func (m Miss) distance() int {
	best := -1
	for _, count := range m.Expected {
		d := count - m.Estimate
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func parseFile(file []byte) []Entry {
	countsByWord := make(map[string][]int)

	lines := bytes.Split(file, []byte("\n"))
	for _, line := range lines {
		word, count, ok := parseLine(bytes.TrimRight(line, "\r"))
		if ok && !containsInt(countsByWord[word], count) {
			countsByWord[word] = append(countsByWord[word], count)
		}
	}

	var result []Entry
	for word, counts := range countsByWord {
		sort.Ints(counts)
		result = append(result, Entry{word, counts})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].word < result[j].word
	})
	return result
}

func parseLine(line []byte) (string, int, bool) {
	if bytes.HasPrefix(line, []byte(";;;")) { // comment
		return "", 0, false
	}
	tokens := bytes.Split(line, []byte("  "))
	if len(tokens) != 2 || len(tokens[0]) == 0 {
		return "", 0, false
	}
	word := string(tokens[0])
	if i := strings.IndexByte(word, '('); i > 0 && word[len(word)-1] == ')' { // alternate pronunciation
		word = word[:i]
	}
	return strings.ToLower(word), countSyllables(tokens[1]), true
}

// countSyllables counts the vowel phonemes in a pronunciation.
func countSyllables(pronunciation []byte) int {
	phonemes := bytes.Split(pronunciation, []byte(" "))
	vowelCount := 0
	for _, phoneme := range phonemes {
		if len(phoneme) < 2 {
			continue
		}
		if _, ok := Vowels[string(phoneme[:2])]; ok {
			vowelCount++
		}
	}
	return vowelCount
}

var Vowels map[string]struct{}

func init() {
	Vowels = make(map[string]struct{})
	vowels := []string{"AA", "AE", "AH", "AO", "AW", "AY", "EH", "ER", "EY", "IH", "IY", "OW", "OY", "UH", "UW"}
	for _, vowel := range vowels {
		Vowels[vowel] = struct{}{}
	}
}

type Entry struct {
	word           string
	syllableCounts []int
}

func containsInt(ints []int, n int) bool {
	for _, i := range ints {
		if i == n {
			return true
		}
	}
	return false
}

func joinInts(ints []int) string {
	strs := make([]string, len(ints))
	for i, n := range ints {
		strs[i] = fmt.Sprint(n)
	}
	return strings.Join(strs, "/")
}
