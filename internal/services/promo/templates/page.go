package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/luxereward/internal/platform/icons"
	"github.com/louisbranch/luxereward/internal/services/promo/routepath"
	"github.com/louisbranch/luxereward/internal/visibility"
)

// Script sources loaded ahead of the page bridge.
const (
	HTMXScriptURL     = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"
	ConfettiScriptURL = "https://cdn.jsdelivr.net/npm/canvas-confetti@1.9.3/dist/confetti.browser.min.js"
)

// LanguageLink is one entry of the footer language switcher.
type LanguageLink struct {
	Label  string
	URL    string
	Active bool
}

// InfoCard is one fade-in benefit card of the event info section.
type InfoCard struct {
	Region   string
	Icon     icons.ID
	TitleKey string
	BodyKey  string
}

// InfoCards returns the benefit cards in page order.
func InfoCards(regions []string) []InfoCard {
	cards := []InfoCard{
		{Icon: icons.IDCalendar, TitleKey: "promo.info.limited.title", BodyKey: "promo.info.limited.body"},
		{Icon: icons.IDStar, TitleKey: "promo.info.premium.title", BodyKey: "promo.info.premium.body"},
		{Icon: icons.IDShieldCheck, TitleKey: "promo.info.secure.title", BodyKey: "promo.info.secure.body"},
	}
	for i := range cards {
		if i < len(regions) {
			cards[i].Region = regions[i]
		}
	}
	return cards
}

// PageView is the render input for the full promo page.
type PageView struct {
	PageID       string
	Lang         string
	Loc          Localizer
	AssetBaseURL string
	NavThreshold float64
	Flags        visibility.Flags
	Cards        []InfoCard
	Coupon       CouponView
	Languages    []LanguageLink
}

// Page renders the complete document.
func Page(view PageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.raw(`<!DOCTYPE html><html`)
		m.attr("lang", view.Lang)
		m.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.text(T(view.Loc, "promo.page_title"))
		m.raw(`</title><link rel="stylesheet"`)
		m.attr("href", routepath.Static(view.AssetBaseURL, "promo.css"))
		m.raw(`></head><body`)
		m.attr("data-page", view.PageID)
		m.attr("data-viewport-url", routepath.Viewport)
		m.attr("data-nav-threshold", strconv.FormatFloat(view.NavThreshold, 'f', -1, 64))
		m.raw(`>`)
		m.raw(icons.LucideSprite())
		navbar(m, view)
		m.raw(`<main>`)
		hero(m, view)
		info(m, view)
		offer(ctx, m, view)
		m.raw(`</main>`)
		footer(m, view)
		m.raw(`<script defer`)
		m.attr("src", HTMXScriptURL)
		m.raw(`></script><script defer`)
		m.attr("src", ConfettiScriptURL)
		m.raw(`></script><script defer`)
		m.attr("src", routepath.Static(view.AssetBaseURL, "promo.js"))
		m.raw(`></script></body></html>`)
		return m.err
	})
}

func brand(m *markup, loc Localizer) {
	m.raw(`<span class="brand">`)
	m.icon(icons.IDBrand, "icon-md icon-accent")
	m.raw(`<span class="brand-word">`)
	m.text(T(loc, "core.brand_primary"))
	m.raw(`<span class="accent">`)
	m.text(T(loc, "core.brand_accent"))
	m.raw(`</span></span></span>`)
}

func navbar(m *markup, view PageView) {
	class := "nav"
	if view.Flags.NavScrolled {
		class += " is-scrolled"
	}
	m.raw(`<nav id="nav"`)
	m.attr("class", class)
	m.raw(`><div class="container nav-inner">`)
	brand(m, view.Loc)
	m.raw(`<div class="nav-links">`)
	for _, link := range []struct{ href, key string }{
		{"#about", "promo.nav.event_info"},
		{"#benefits", "promo.nav.benefits"},
		{"#coupon", "promo.nav.get_coupon"},
	} {
		m.raw(`<a`)
		m.attr("href", link.href)
		m.raw(`>`)
		m.text(T(view.Loc, link.key))
		m.raw(`</a>`)
	}
	m.raw(`</div></div></nav>`)
}

func hero(m *markup, view PageView) {
	m.raw(`<section class="hero"><div class="hero-glow"></div><div class="container hero-inner"><div class="hero-badge">`)
	m.icon(icons.IDSparkles, "icon-sm")
	m.raw(`<span>`)
	m.text(T(view.Loc, "promo.hero.badge"))
	m.raw(`</span></div><h1>`)
	m.text(T(view.Loc, "promo.hero.headline_lead"))
	m.raw(`<br><span class="hero-accent">`)
	m.text(T(view.Loc, "promo.hero.headline_accent"))
	m.raw(`</span></h1><p class="hero-body">`)
	m.text(T(view.Loc, "promo.hero.body_lead"))
	m.raw(`<br>`)
	m.text(T(view.Loc, "promo.hero.body_tail"))
	m.raw(`</p><div class="hero-actions"><a class="button-primary" href="#coupon">`)
	m.text(T(view.Loc, "promo.hero.join_now"))
	m.raw(`</a><a class="button-ghost" href="#about">`)
	m.text(T(view.Loc, "promo.hero.learn_more"))
	m.raw(`</a></div></div><div class="scroll-indicator"></div></section>`)
}

func info(m *markup, view PageView) {
	m.raw(`<section id="about" class="info"><div id="benefits" class="container info-grid">`)
	for _, card := range view.Cards {
		class := "fade-card"
		if view.Flags.Revealed[card.Region] {
			class += " is-revealed"
		}
		m.raw(`<div`)
		m.attr("class", class)
		m.attr("data-reveal", card.Region)
		m.raw(`><div class="card-icon">`)
		m.icon(card.Icon, "icon-lg icon-accent")
		m.raw(`</div><h3>`)
		m.text(T(view.Loc, card.TitleKey))
		m.raw(`</h3><p>`)
		m.text(T(view.Loc, card.BodyKey))
		m.raw(`</p></div>`)
	}
	m.raw(`</div></section>`)
}

func offer(ctx context.Context, m *markup, view PageView) {
	m.raw(`<section id="coupon" class="offer"><div class="container"><div class="offer-card"><div class="offer-art"><div class="offer-art-copy"><span class="eyebrow">`)
	m.text(T(view.Loc, "promo.offer.eyebrow"))
	m.raw(`</span><h2>`)
	m.text(T(view.Loc, "promo.offer.headline_lead"))
	m.raw(`<br>`)
	m.text(T(view.Loc, "promo.offer.headline_tail"))
	m.raw(`</h2><p class="quote">`)
	m.text(T(view.Loc, "promo.offer.quote"))
	m.raw(`</p></div></div><div class="offer-redeem"><div class="offer-redeem-copy"><h3>`)
	m.text(T(view.Loc, "promo.offer.redeem_title"))
	m.raw(`</h3><p>`)
	m.text(T(view.Loc, "promo.offer.redeem_body"))
	m.raw(`</p></div>`)
	if m.err == nil {
		m.err = CouponPanel(view.Coupon).Render(ctx, m.w)
	}
	m.raw(`<div class="stats"><div class="stat"><p class="stat-value">`)
	m.text(T(view.Loc, "promo.offer.stat_members_value"))
	m.raw(`</p><p class="stat-label">`)
	m.text(T(view.Loc, "promo.offer.stat_members_label"))
	m.raw(`</p></div><div class="stat-divider"></div><div class="stat"><p class="stat-value">`)
	m.text(T(view.Loc, "promo.offer.stat_rating_value"))
	m.raw(`</p><p class="stat-label">`)
	m.text(T(view.Loc, "promo.offer.stat_rating_label"))
	m.raw(`</p></div></div></div></div></div></section>`)
}

func footer(m *markup, view PageView) {
	m.raw(`<footer class="footer"><div class="container footer-grid"><div class="footer-brand">`)
	brand(m, view.Loc)
	m.raw(`<p>`)
	m.text(T(view.Loc, "promo.footer.blurb"))
	m.raw(`</p><div class="socials">`)
	for _, id := range []icons.ID{icons.IDInstagram, icons.IDFacebook, icons.IDTwitter} {
		m.raw(`<a href="#" class="social"`)
		m.attr("aria-label", string(id))
		m.raw(`>`)
		m.icon(id, "icon-sm")
		m.raw(`</a>`)
	}
	m.raw(`</div></div><div><h4>`)
	m.text(T(view.Loc, "promo.footer.quick_links"))
	m.raw(`</h4><ul class="footer-links">`)
	for _, key := range []string{"promo.footer.about_brand", "promo.footer.privacy", "promo.footer.terms", "promo.footer.support"} {
		m.raw(`<li><a href="#">`)
		m.text(T(view.Loc, key))
		m.raw(`</a></li>`)
	}
	m.raw(`</ul></div><div><h4>`)
	m.text(T(view.Loc, "promo.footer.newsletter_title"))
	m.raw(`</h4><p>`)
	m.text(T(view.Loc, "promo.footer.newsletter_body"))
	m.raw(`</p><div class="newsletter"><input type="email"`)
	m.attr("placeholder", T(view.Loc, "promo.footer.email_placeholder"))
	m.raw(`><button type="button" class="newsletter-send">`)
	m.icon(icons.IDArrowRight, "icon-sm")
	m.raw(`</button></div></div></div><div class="container footer-bottom">`)
	if len(view.Languages) > 0 {
		m.raw(`<ul class="languages">`)
		for _, lang := range view.Languages {
			m.raw(`<li><a`)
			m.attr("href", lang.URL)
			if lang.Active {
				m.raw(` aria-current="true"`)
			}
			m.raw(`>`)
			m.text(lang.Label)
			m.raw(`</a></li>`)
		}
		m.raw(`</ul>`)
	}
	m.raw(`<p class="copyright">`)
	m.text(T(view.Loc, "promo.footer.copyright"))
	m.raw(`</p></div></footer>`)
}
