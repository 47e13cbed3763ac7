package copygen

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
)

// Fallback template categories keyed off the ad purpose.
const (
	categoryLaunch    = "launch"
	categoryAwareness = "awareness"
	categorySales     = "sales"
	categoryGeneric   = "generic"
)

// FallbackCopies produces three deterministic templated copy variants from
// simple keyword matching on the purpose plus brand substitution. It is
// pure and total: same brief in, same copies out, no failure mode.
func FallbackCopies(brief domain.Brief) []domain.CopyVariant {
	name := strings.TrimSpace(brief.Brand.Name)
	if name == "" {
		name = "Your Brand"
	} else {
		name = cases.Title(language.English, cases.NoLower).String(name)
	}
	slogan := strings.TrimSpace(brief.Brand.Slogan)
	if slogan == "" {
		slogan = "Quality you can trust"
	}

	switch classifyPurpose(brief.Purpose) {
	case categoryLaunch:
		return []domain.CopyVariant{
			{Title: fmt.Sprintf("%s Just Launched", name), Description: fmt.Sprintf("%s. Discover the newest from %s today.", slogan, name), CTA: "Try It Now"},
			{Title: fmt.Sprintf("Meet the New %s", name), Description: fmt.Sprintf("Fresh from %s, built on a promise: %s.", name, slogan), CTA: "Learn More"},
			{Title: fmt.Sprintf("%s, Now Available", name), Description: fmt.Sprintf("Be first to experience what %s made next.", name), CTA: "Shop Now"},
		}
	case categoryAwareness:
		return []domain.CopyVariant{
			{Title: fmt.Sprintf("Choose %s", name), Description: fmt.Sprintf("%s. A name you can count on.", slogan), CTA: "Discover Us"},
			{Title: fmt.Sprintf("%s Stands Apart", name), Description: fmt.Sprintf("See why people keep coming back to %s.", name), CTA: "Learn More"},
			{Title: fmt.Sprintf("Trust %s", name), Description: fmt.Sprintf("%s, every single day with %s.", slogan, name), CTA: "Find Out More"},
		}
	case categorySales:
		return []domain.CopyVariant{
			{Title: fmt.Sprintf("%s Limited Offer", name), Description: fmt.Sprintf("%s. Savings from %s for a short time only.", slogan, name), CTA: "Buy Now"},
			{Title: fmt.Sprintf("Save Big at %s", name), Description: fmt.Sprintf("Special prices on what %s does best.", name), CTA: "Grab the Deal"},
			{Title: fmt.Sprintf("%s Sale On Now", name), Description: fmt.Sprintf("Don't wait: %s offers end soon.", name), CTA: "Order Today"},
		}
	default:
		return []domain.CopyVariant{
			{Title: fmt.Sprintf("%s - Made for You", name), Description: fmt.Sprintf("%s. Professional service from %s.", slogan, name), CTA: "Get Started"},
			{Title: fmt.Sprintf("Experience %s", name), Description: fmt.Sprintf("Dependable quality, delivered by %s.", name), CTA: "Try Today"},
			{Title: fmt.Sprintf("Go with %s", name), Description: fmt.Sprintf("%s, the way only %s can.", slogan, name), CTA: "Learn More"},
		}
	}
}

func classifyPurpose(purpose string) string {
	p := strings.ToLower(purpose)
	switch {
	case containsAny(p, "new product", "launch", "promot", "introduc", "release"):
		return categoryLaunch
	case containsAny(p, "brand", "awareness", "recognition", "visibility"):
		return categoryAwareness
	case containsAny(p, "sale", "discount", "deal", "offer", "clearance"):
		return categorySales
	default:
		return categoryGeneric
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
