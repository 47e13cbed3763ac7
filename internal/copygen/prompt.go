package copygen

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// buildPrompt embeds the brief into a single structured instruction. The
// character limits are advisory guidance to the model and are not enforced
// on the parsed result.
func buildPrompt(brief domain.Brief) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a professional advertising copywriter. Produce 3 distinct ad copy variants for the request below.\n\n")
	fmt.Fprintf(sb, "Ad purpose: %s\n", strings.TrimSpace(brief.Purpose))
	sb.WriteString("Brand info:\n")
	fmt.Fprintf(sb, "- Name: %s\n", orUnspecified(brief.Brand.Name))
	fmt.Fprintf(sb, "- Slogan: %s\n", orUnspecified(brief.Brand.Slogan))
	fmt.Fprintf(sb, "- Website: %s\n", orUnspecified(brief.Brand.URL))
	sb.WriteString("\nRequirements:\n")
	sb.WriteString("1. Each variant has a title, a description, and a call to action (cta).\n")
	sb.WriteString("2. Titles are punchy, at most 30 characters.\n")
	sb.WriteString("3. Descriptions highlight the product or service benefit, at most 80 characters.\n")
	sb.WriteString("4. CTAs are concrete and action-driving, at most 15 characters.\n")
	sb.WriteString("5. Keep text compact so it does not dominate the ad image.\n")
	sb.WriteString("\nRespond strictly with JSON of the shape ")
	sb.WriteString(`{"copies":[{"title":string,"description":string,"cta":string},{"title":string,"description":string,"cta":string},{"title":string,"description":string,"cta":string}]}`)
	sb.WriteString(" and nothing else.")
	return sb.String()
}

func orUnspecified(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not provided"
	}
	return v
}
