package processing

import (
	"strings"

	"github.com/DeafMist/gift-radar/internal/models"
)

const (
	reasonMarker = "Reason:"
	nameLabel    = "Product_name:"
)

type extractState int

const (
	awaitingName extractState = iota
	accumulatingName
)

// ExtractIdeas rebuilds (name, reason) pairs from normalized model text.
//
// A name may wrap over several lines and is closed by the next line carrying "Reason:".
// A reason with no preceding name and a trailing name with no reason are both dropped.
// Ideas are returned in the order their reasons appear.
func ExtractIdeas(text string) []models.GiftIdea {
	var (
		ideas   []models.GiftIdea
		state   = awaitingName
		pending string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if idx := strings.Index(line, reasonMarker); idx >= 0 {
			reason := strings.TrimSpace(line[idx+len(reasonMarker):])
			if state == accumulatingName {
				ideas = append(ideas, models.GiftIdea{Keyword: pending, Reason: reason})
			}
			state, pending = awaitingName, ""
			continue
		}

		switch state {
		case awaitingName:
			pending = strings.TrimSpace(strings.TrimPrefix(line, nameLabel))
			state = accumulatingName
		case accumulatingName:
			if pending == "" {
				pending = line
			} else {
				pending += " " + line
			}
		}
	}

	return ideas
}
