package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/gift-radar/internal/models"
	"github.com/DeafMist/gift-radar/internal/prompt"
)

func TestComposeClauseOrder(t *testing.T) {
	c := prompt.New()
	got := c.Compose(models.Criteria{
		Age:           "30",
		Gender:        "female",
		Occasion:      "Diwali",
		RecipientType: "sister",
		Categories:    []string{"books", "tea"},
		PriceRange:    "1000-2000",
	})

	clauses := []string{
		"for a 30-year-old",
		"sister",
		"who is female",
		"and loves books, tea items",
		"suitable for Diwali",
		"within the price range 1000-2000",
	}
	last := -1
	for _, clause := range clauses {
		idx := strings.Index(got, clause)
		require.Greater(t, idx, last, "clause %q out of order", clause)
		last = idx
	}

	require.Contains(t, got, "without any special characters such as *, -, or numbering")
	require.Contains(t, got, "Product_name: RVA Cute Flower")
	require.Contains(t, got, "Generate 6 products")
	require.NotContains(t, got, "\n")
}

func TestComposeSkipsAbsentFilters(t *testing.T) {
	c := prompt.New()
	got := c.Compose(models.Criteria{Gender: "male", Categories: []string{" ", ""}})

	require.Contains(t, got, "name, company, model, and price. who is male These gifts")
	require.NotContains(t, got, "year-old")
	require.NotContains(t, got, "loves")
	require.Equal(t, 1, strings.Count(got, "suitable for"), "only the worked example mentions suitability")
	require.NotContains(t, got, "price range")
}

func TestComposeFreeTextWins(t *testing.T) {
	c := prompt.New()
	got := c.Compose(models.Criteria{
		Query:  "my dad loves gardening and old films",
		Gender: "female",
	})

	require.Contains(t, got, "'my dad loves gardening and old films'")
	require.NotContains(t, got, "who is female")
	require.Equal(t, 7, strings.Count(got, "Product_name:"))
	require.Equal(t, 7, strings.Count(got, "Reason:"))
}

func TestComposeIsDeterministic(t *testing.T) {
	c := prompt.New()
	criteria := models.Criteria{Age: "8", Categories: []string{"lego"}}
	require.Equal(t, c.Compose(criteria), c.Compose(criteria))
}

func TestComposeHonoursCount(t *testing.T) {
	c := &prompt.Composer{Market: "Germany", Marketplace: "Amazon.de", Count: 3}

	require.Contains(t, c.Compose(models.Criteria{}), "Generate 3 products")
	require.Contains(t, c.Compose(models.Criteria{}), "Amazon.de")
	require.Equal(t, 4, strings.Count(c.Compose(models.Criteria{Query: "x"}), "Product_name:"))
}
