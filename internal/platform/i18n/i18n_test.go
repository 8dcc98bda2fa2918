package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  language.Tag
		ok    bool
	}{
		{value: "en-US", want: language.AmericanEnglish, ok: true},
		{value: "pt-BR", want: language.BrazilianPortuguese, ok: true},
		{value: "pt", want: language.BrazilianPortuguese, ok: true},
		{value: "", ok: false},
		{value: "not a tag", ok: false},
		{value: "ja-JP", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseTag(tt.value)
		if ok != tt.ok {
			t.Fatalf("ParseTag(%q) ok = %t, want %t", tt.value, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("ParseTag(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestMatchTagsFallsBackToDefault(t *testing.T) {
	t.Parallel()

	if got := MatchTags(nil); got != DefaultTag() {
		t.Fatalf("MatchTags(nil) = %v, want %v", got, DefaultTag())
	}
	if got := MatchTags([]language.Tag{language.Japanese}); got != DefaultTag() {
		t.Fatalf("MatchTags(ja) = %v, want %v", got, DefaultTag())
	}
	if got := MatchTags([]language.Tag{language.Japanese, language.Portuguese}); got != language.BrazilianPortuguese {
		t.Fatalf("MatchTags(ja, pt) = %v, want %v", got, language.BrazilianPortuguese)
	}
}

func TestPrinterUsesCatalog(t *testing.T) {
	t.Parallel()

	if got := Printer(language.AmericanEnglish).Sprintf("promo.coupon.cta"); got != "Get Exclusive Coupon" {
		t.Fatalf("cta = %q, want %q", got, "Get Exclusive Coupon")
	}
	if got := Printer(language.BrazilianPortuguese).Sprintf("promo.coupon.expiry", 30); got != "Expira em 30 dias. Use no checkout." {
		t.Fatalf("expiry = %q", got)
	}
	if got := Printer(language.AmericanEnglish).Sprintf("promo.offer.headline_lead"); got != "30% Off" {
		t.Fatalf("headline = %q, want %q", got, "30% Off")
	}
}
