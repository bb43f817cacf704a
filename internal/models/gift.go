package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	maxQueryLength = 2000
	maxCategories  = 20
)

// ErrInvalidCriteria marks criteria that cannot be turned into a prompt.
var ErrInvalidCriteria = errors.New("invalid criteria")

// GiftIdea is a candidate product name and its justification as extracted from model text.
type GiftIdea struct {
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}

// Criteria describes what the caller is shopping for. Query wins over the structured filters.
type Criteria struct {
	Query         string   `json:"prompt,omitempty"`
	Age           Age      `json:"age,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	Occasion      string   `json:"occasion,omitempty"`
	RecipientType string   `json:"recipient_type,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	PriceRange    string   `json:"price_range,omitempty"`
}

// IsFreeText reports whether the free-text query should be used instead of the filters.
func (c Criteria) IsFreeText() bool {
	return strings.TrimSpace(c.Query) != ""
}

// Validate rejects criteria that are too large to embed into a prompt.
func (c Criteria) Validate() error {
	if n := len([]rune(c.Query)); n > maxQueryLength {
		return fmt.Errorf("%w: prompt is %d characters, limit is %d", ErrInvalidCriteria, n, maxQueryLength)
	}
	if len(c.Categories) > maxCategories {
		return fmt.Errorf("%w: %d categories, limit is %d", ErrInvalidCriteria, len(c.Categories), maxCategories)
	}
	return nil
}

// Age accepts both "30" and 30 on the wire.
type Age string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("age must be a string or number: %w", err)
	}
	*a = Age(n.String())
	return nil
}
