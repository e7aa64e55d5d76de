// Package haiku detects 5-7-5 haiku in chat messages using a rule-based English syllable estimate.
package haiku

import (
	"strings"
)

// LineTargets holds the syllable count of each haiku line, in order.
var LineTargets = [3]int{5, 7, 5}

type state int

const (
	buildingFirst state = iota
	buildingSecond
	buildingThird
	done
)

// matcher groups tokens into haiku lines greedily. It never backtracks; a token which pushes the current
// line past its target ends the match.
type matcher struct {
	state     state
	lines     []string
	tokens    []string
	syllables int
}

// feed consumes a single token and reports whether the message may still be a haiku.
func (m *matcher) feed(token string) bool {
	count := EstimateSyllables(token)
	if count == 0 {
		return true
	}
	if m.state == done {
		return false
	}
	m.tokens = append(m.tokens, token)
	m.syllables += count

	target := LineTargets[m.state]
	if m.syllables > target {
		return false
	}
	if m.syllables == target {
		m.lines = append(m.lines, strings.Join(m.tokens, " "))
		m.tokens = nil
		m.syllables = 0
		m.state++
	}
	return true
}

// FindHaiku splits message into three lines of 5, 7 and 5 syllables. Lines are made of the original tokens
// joined by single spaces; tokens worth zero syllables are left out. The boolean is false, and no lines are
// returned, if message is not a haiku.
func FindHaiku(message string) ([]string, bool) {
	var m matcher
	for _, token := range strings.Fields(message) {
		if !m.feed(token) {
			return nil, false
		}
	}
	if m.state != done {
		return nil, false
	}
	return m.lines, true
}

// IsHaiku reports whether message is a haiku.
func IsHaiku(message string) bool {
	_, ok := FindHaiku(message)
	return ok
}
