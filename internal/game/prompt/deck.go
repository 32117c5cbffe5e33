// Package prompt holds the writing cues shown at the start of each round.
package prompt

import (
	"errors"
	"math/rand/v2"
	"strings"
)

// ErrEmptyDeck is returned when a deck would contain no usable prompt.
var ErrEmptyDeck = errors.New("prompt deck is empty")

var waterdeep = []string{
	"Why does Kaige Omen REALLY want to destroy Waterdeep?",
	"What is Oberon actually doing as a beggar in the city?",
	"The TRUTH behind why all the Masked Lords keep getting assassinated",
	"What Dusara al'Abhook's real plan is now that she can walk in sunlight",
	"Why the Stone of Golorr is causing so much chaos between the guilds",
	"The secret reason Captain Maverick keeps getting promoted",
	"What Thorn is ACTUALLY planning with Deepwater Mercantile",
	"Why Mielikki's power has been waning recently",
	"The real reason Duncan betrayed the party",
	"What Winter's Herald is ACTUALLY testing the party for",
	"Why Sprig looks exactly like Oberon (and it's not what you think)",
	"The truth about what happened to Apoch's creator Meepo",
}

// Deck is an immutable prompt list, safe for concurrent use.
type Deck struct {
	prompts []string
}

// Default returns the Waterdeep deck.
func Default() *Deck {
	return &Deck{prompts: append([]string(nil), waterdeep...)}
}

// NewDeck builds a deck from prompts, dropping blank entries.
func NewDeck(prompts []string) (*Deck, error) {
	d := &Deck{}
	for _, p := range prompts {
		if p = strings.TrimSpace(p); p != "" {
			d.prompts = append(d.prompts, p)
		}
	}
	if len(d.prompts) == 0 {
		return nil, ErrEmptyDeck
	}
	return d, nil
}

// Len returns the number of prompts.
func (d *Deck) Len() int {
	return len(d.prompts)
}

// Prompts returns a copy of the prompt list.
func (d *Deck) Prompts() []string {
	return append([]string(nil), d.prompts...)
}

// Pick chooses uniformly among the prompts that differ from previous.
// When every prompt equals previous it is returned again.
func (d *Deck) Pick(previous string) string {
	candidates := make([]string, 0, len(d.prompts))
	for _, p := range d.prompts {
		if p != previous {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return d.prompts[rand.IntN(len(d.prompts))]
	}
	return candidates[rand.IntN(len(candidates))]
}
