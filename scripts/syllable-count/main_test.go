package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dict = `;;; # CMUdict  --  Major Version: 0.07
HELLO  HH AH0 L OW1
HELLO(1)  HH EH0 L OW1
EVERY  EH1 V ER0 IY0
EVERY(1)  EH1 V R IY0
CAT  K AE1 T
QUEUE  K Y UW1
`

func TestParseFile(t *testing.T) {
	entries := parseFile([]byte(dict))

	require.Len(t, entries, 4)
	assert.Equal(t, Entry{"cat", []int{1}}, entries[0])
	assert.Equal(t, Entry{"every", []int{2, 3}}, entries[1])
	assert.Equal(t, Entry{"hello", []int{2}}, entries[2])
	assert.Equal(t, Entry{"queue", []int{1}}, entries[3])
}

func TestParseLine(t *testing.T) {
	_, _, ok := parseLine([]byte(";;; comment"))
	assert.False(t, ok)

	_, _, ok = parseLine([]byte(""))
	assert.False(t, ok)

	word, count, ok := parseLine([]byte("HELLO(1)  HH EH0 L OW1"))
	assert.True(t, ok)
	assert.Equal(t, "hello", word)
	assert.Equal(t, 2, count)
}

func TestCompare(t *testing.T) {
	report := compare([]Entry{
		{"hello", []int{2}},
		{"every", []int{2, 3}},
		{"cat", []int{3}},
		{"queue", []int{4}},
	})

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Matched)
	assert.InDelta(t, 0.5, report.Accuracy(), 1e-9)
	require.Len(t, report.Misses, 2)
	assert.Equal(t, "queue", report.Misses[0].Word)
	assert.Equal(t, "cat", report.Misses[1].Word)

	var out bytes.Buffer
	report.Print(&out, 1)
	assert.Equal(t, "words:    4\nmatched:  2\naccuracy: 50.00%\nqueue estimated 1 expected 4\n", out.String())
}
