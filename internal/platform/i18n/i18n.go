// Package i18n defines the locales the service supports and how request
// language tags are matched against them.
package i18n

import (
	"strings"

	// Registers the embedded catalogs with x/text/message.
	_ "github.com/louisbranch/luxereward/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supportedTags)

// SupportedTags returns the supported language tags, default first.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(supportedTags))
	copy(out, supportedTags)
	return out
}

// DefaultTag returns the fallback language tag.
func DefaultTag() language.Tag {
	return supportedTags[0]
}

// ParseTag parses value and reports whether it names a supported language.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	matched, _, confidence := matcher.Match(tag)
	if confidence < language.High {
		return language.Tag{}, false
	}
	return supportedTag(matched), true
}

// MatchTags picks the best supported tag for an Accept-Language list.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	matched, _, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTag(matched)
}

// LocaleForTag returns the catalog locale identifier for tag.
func LocaleForTag(tag language.Tag) string {
	return supportedTag(tag).String()
}

// Printer returns a message printer bound to the embedded catalogs.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(supportedTag(tag))
}

// supportedTag strips matcher extensions (e.g. "-u-rg-") so the result
// compares equal to an entry of supportedTags.
func supportedTag(tag language.Tag) language.Tag {
	base, _ := tag.Base()
	region, _ := tag.Region()
	for _, candidate := range supportedTags {
		cBase, _ := candidate.Base()
		cRegion, _ := candidate.Region()
		if cBase == base && cRegion == region {
			return candidate
		}
	}
	for _, candidate := range supportedTags {
		cBase, _ := candidate.Base()
		if cBase == base {
			return candidate
		}
	}
	return DefaultTag()
}
