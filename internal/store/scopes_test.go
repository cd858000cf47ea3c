package store

import (
	"context"
	"testing"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
)

func TestLikePatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"acme":   "%acme%",
		"_":      `%\_%`,
		"100%":   `%100\%%`,
		`a\b`:    `%a\\b%`,
		"ООО_ру": `%ООО\_ру%`,
	}
	for in, want := range cases {
		if got := likePattern(in); got != want {
			t.Fatalf("likePattern(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSearchContactsTreatsWildcardsLiterally(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, name := range []string{"Acme", "Road_Works", "Sale 100%"} {
		if err := m.CreateContact(ctx, &models.CompanyContact{CompanyName: name}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	found, err := m.SearchContacts(ctx, "_", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(found) != 1 || found[0].CompanyName != "Road_Works" {
		t.Fatalf("expected only Road_Works, got %+v", found)
	}
	found, _ = m.SearchContacts(ctx, "%", 0)
	if len(found) != 1 || found[0].CompanyName != "Sale 100%" {
		t.Fatalf("expected only the percent company, got %+v", found)
	}
}
