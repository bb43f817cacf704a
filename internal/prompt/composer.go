package prompt

import (
	"fmt"
	"strings"

	"github.com/DeafMist/gift-radar/internal/models"
)

const (
	exampleName   = "RVA Cute Flower Shaped Floor Cushion for Kids Room Living Room, Bedroom Furnishing Velvet Throw Pillow Cushion for Home Decoration Kids Girls Women Gift"
	exampleReason = "Chosen for its cute design, suitable for kids and home decoration, and its popularity on Indian e-commerce sites."
)

// Composer builds model instructions for a market. The zero value is not usable; call New.
type Composer struct {
	Market      string
	Marketplace string
	Count       int
}

// New returns a Composer for the default market.
func New() *Composer {
	return &Composer{
		Market:      "India",
		Marketplace: "Amazon India",
		Count:       6,
	}
}

// Compose turns criteria into an instruction. A free-text query takes precedence over filters.
func (c *Composer) Compose(criteria models.Criteria) string {
	if criteria.IsFreeText() {
		return c.freeText(criteria.Query)
	}
	return c.filtered(criteria)
}

func (c *Composer) filtered(criteria models.Criteria) string {
	parts := []string{
		fmt.Sprintf("You are an expert in finding gifts for people in %s. Provide me a list of %d popular and trending different products that can be searched using the product name. Each product should include the detailed product name, company, model, and price.", c.Market, c.Count),
	}

	if age := strings.TrimSpace(string(criteria.Age)); age != "" {
		parts = append(parts, fmt.Sprintf("for a %s-year-old", age))
	}
	if v := strings.TrimSpace(criteria.RecipientType); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(criteria.Gender); v != "" {
		parts = append(parts, fmt.Sprintf("who is %s", v))
	}
	if cats := nonBlank(criteria.Categories); len(cats) > 0 {
		parts = append(parts, fmt.Sprintf("and loves %s items", strings.Join(cats, ", ")))
	}
	if v := strings.TrimSpace(criteria.Occasion); v != "" {
		parts = append(parts, fmt.Sprintf("suitable for %s", v))
	}
	if v := strings.TrimSpace(criteria.PriceRange); v != "" {
		parts = append(parts, fmt.Sprintf("within the price range %s", v))
	}

	parts = append(parts,
		fmt.Sprintf("These gifts should be popular in %s and available on e-commerce websites like %s. Ensure that each product is followed by its detailed product name, company, model, price, and a convincing reason for its selection. Ensure that the products are listed without any special characters such as *, -, or numbering. Here is an example:", c.Market, c.Marketplace),
		"Product_name: "+exampleName,
		"Reason: "+exampleReason,
		fmt.Sprintf("Generate %d products with detailed product name, company, model, price, and reason for selection as a gift idea. Each reason should be just below the product name.", c.Count),
	)

	return strings.Join(parts, " ")
}

func (c *Composer) freeText(query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert in finding gifts for people in %s. Based on the following input: '%s', provide me with a list of %d popular and trending products in %s that would make excellent gifts. ", c.Market, query, c.Count, c.Market)
	fmt.Fprintf(&b, "These products should be available for purchase on major e-commerce websites like %s. Ensure that the list includes detailed product names, company, model, price, followed by a convincing reason for selecting each product as a gift idea. ", c.Marketplace)
	b.WriteString("The reason should explain why the product is a good gift. Provide the output in the following format:\n\n")
	for range c.Count {
		b.WriteString("Product_name:\nReason:\n")
	}
	b.WriteString("Here is an example:\n")
	b.WriteString("Product_name: " + exampleName + "\n")
	b.WriteString("Reason: " + exampleReason)
	return b.String()
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
