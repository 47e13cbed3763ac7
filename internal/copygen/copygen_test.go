package copygen

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	delay time.Duration
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

const validPayload = `{"copies":[
	{"title":"A","description":"a desc","cta":"Go"},
	{"title":"B","description":"b desc","cta":"Go"},
	{"title":"C","description":"c desc","cta":"Go"}
]}`

func testBrief(purpose string) domain.Brief {
	return domain.Brief{Purpose: purpose, Brand: domain.BrandInfo{Name: "Acme", Slogan: "Built to last"}}
}

func TestGenerateUsesProviderResponse(t *testing.T) {
	g := NewGenerator([]Provider{&stubProvider{name: "stub", text: validPayload}}, time.Second, zerolog.Nop())
	res := g.Generate(context.Background(), testBrief("increase signups"))
	if res.Source != SourceAI {
		t.Fatalf("Source = %q, want %q", res.Source, SourceAI)
	}
	if len(res.Copies) != 3 {
		t.Fatalf("len(Copies) = %d, want 3", len(res.Copies))
	}
	if res.Copies[0].Title != "A" || res.Copies[2].CTA != "Go" {
		t.Fatalf("unexpected copies: %#v", res.Copies)
	}
}

func TestGenerateFallsBackWithoutProviders(t *testing.T) {
	g := NewGenerator(nil, time.Second, zerolog.Nop())
	res := g.Generate(context.Background(), testBrief("increase signups"))
	if res.Source != SourceFallback {
		t.Fatalf("Source = %q, want %q", res.Source, SourceFallback)
	}
	if len(res.Copies) != 3 {
		t.Fatalf("len(Copies) = %d, want 3", len(res.Copies))
	}
}

func TestGenerateNeverFailsOutward(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
	}{
		{name: "provider error", provider: &stubProvider{name: "stub", err: errors.New("boom")}},
		{name: "garbage payload", provider: &stubProvider{name: "stub", text: "not json at all"}},
		{name: "wrong variant count", provider: &stubProvider{name: "stub", text: `{"copies":[{"title":"A","description":"d","cta":"c"}]}`}},
		{name: "blank fields", provider: &stubProvider{name: "stub", text: `{"copies":[{"title":"","description":"d","cta":"c"},{"title":"b","description":"d","cta":"c"},{"title":"c","description":"d","cta":"c"}]}`}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator([]Provider{tc.provider}, time.Second, zerolog.Nop())
			res := g.Generate(context.Background(), testBrief("anything"))
			if res.Source != SourceFallback {
				t.Fatalf("Source = %q, want %q", res.Source, SourceFallback)
			}
			if len(res.Copies) != 3 {
				t.Fatalf("len(Copies) = %d, want 3", len(res.Copies))
			}
		})
	}
}

func TestGenerateDeadlineBeatsSlowProvider(t *testing.T) {
	slow := &stubProvider{name: "slow", text: validPayload, delay: 2 * time.Second}
	g := NewGenerator([]Provider{slow}, 50*time.Millisecond, zerolog.Nop())

	start := time.Now()
	res := g.Generate(context.Background(), testBrief("increase signups"))
	elapsed := time.Since(start)

	if res.Source != SourceFallback {
		t.Fatalf("Source = %q, want %q", res.Source, SourceFallback)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("Generate took %v, deadline race did not trigger", elapsed)
	}
}

func TestFallbackCopiesDeterministic(t *testing.T) {
	brief := testBrief("sale on everything")
	first := FallbackCopies(brief)
	second := FallbackCopies(brief)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fallback copies are not deterministic: %#v vs %#v", first, second)
	}
}

func TestFallbackSubstitutesBrand(t *testing.T) {
	copies := FallbackCopies(domain.Brief{Purpose: "launch our new product", Brand: domain.BrandInfo{Name: "acme soda", Slogan: "Taste the fizz"}})
	found := false
	for _, c := range copies {
		if c.Title == "Acme Soda Just Launched" {
			found = true
		}
	}
	if !found {
		t.Fatalf("brand name not substituted/title-cased: %#v", copies)
	}
}

func TestClassifyPurpose(t *testing.T) {
	tests := []struct {
		purpose string
		want    string
	}{
		{"launch our new product line", categoryLaunch},
		{"promote the spring collection", categoryLaunch},
		{"raise brand awareness", categoryAwareness},
		{"flash sale this weekend", categorySales},
		{"20% discount on shoes", categorySales},
		{"increase signups", categoryGeneric},
		{"", categoryGeneric},
	}
	for _, tc := range tests {
		t.Run(tc.purpose, func(t *testing.T) {
			if got := classifyPurpose(tc.purpose); got != tc.want {
				t.Fatalf("classifyPurpose(%q) = %q, want %q", tc.purpose, got, tc.want)
			}
		})
	}
}
