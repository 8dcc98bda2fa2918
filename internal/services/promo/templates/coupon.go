package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/louisbranch/luxereward/internal/issuance"
	"github.com/louisbranch/luxereward/internal/platform/icons"
	"github.com/louisbranch/luxereward/internal/services/promo/routepath"
)

// CouponPanelID is the DOM id swapped by every coupon fragment.
const CouponPanelID = "coupon-panel"

// CouponView is the render input for the coupon panel.
type CouponView struct {
	PageID string
	Status issuance.Status
	Code   string
	// Reason is the localized failure text shown in the Failed panel.
	Reason       string
	ExpiryDays   int
	PollInterval time.Duration
	Loc          Localizer
}

// CouponPanel renders the fragment for the view's status.
func CouponPanel(view CouponView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		switch view.Status {
		case issuance.StatusPending:
			couponPending(m, view)
		case issuance.StatusFulfilled:
			couponFulfilled(m, view)
		case issuance.StatusFailed:
			couponFailed(m, view)
		default:
			couponIdle(m, view)
		}
		return m.err
	})
}

func couponIdle(m *markup, view CouponView) {
	m.raw(`<div`)
	m.attr("id", CouponPanelID)
	m.raw(` class="coupon" data-status="idle">`)
	m.raw(`<button type="button" class="coupon-button"`)
	m.attr("hx-post", routepath.CouponIssueFor(view.PageID))
	m.attr("hx-target", "#"+CouponPanelID)
	m.raw(` hx-swap="outerHTML" hx-disabled-elt="this">`)
	m.icon(icons.IDGift, "icon-lg")
	m.raw(`<span>`)
	m.text(T(view.Loc, "promo.coupon.cta"))
	m.raw(`</span>`)
	m.icon(icons.IDArrowRight, "icon-md icon-muted")
	m.raw(`</button></div>`)
}

func couponPending(m *markup, view CouponView) {
	poll := view.PollInterval
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	m.raw(`<div`)
	m.attr("id", CouponPanelID)
	m.raw(` class="coupon" data-status="pending"`)
	m.attr("hx-get", routepath.CouponFor(view.PageID))
	m.attr("hx-trigger", fmt.Sprintf("every %dms", poll.Milliseconds()))
	m.raw(` hx-swap="outerHTML">`)
	m.raw(`<button type="button" class="coupon-button is-pending" disabled aria-busy="true">`)
	m.icon(icons.IDLoading, "icon-lg spin")
	m.raw(`<span>`)
	m.text(T(view.Loc, "promo.coupon.pending"))
	m.raw(`</span></button></div>`)
}

func couponFulfilled(m *markup, view CouponView) {
	m.raw(`<div`)
	m.attr("id", CouponPanelID)
	m.raw(` class="coupon coupon-success" data-status="fulfilled" role="status">`)
	m.raw(`<div class="coupon-badge">`)
	m.icon(icons.IDSuccess, "icon-xl")
	m.raw(`</div><h3>`)
	m.text(T(view.Loc, "promo.coupon.success_title"))
	m.raw(`</h3><p class="coupon-code-line">`)
	m.text(T(view.Loc, "promo.coupon.code_label"))
	m.raw(` <span class="coupon-code">`)
	m.text(view.Code)
	m.raw(`</span></p><p class="coupon-expiry">`)
	m.text(T(view.Loc, "promo.coupon.expiry", view.ExpiryDays))
	m.raw(`</p></div>`)
}

func couponFailed(m *markup, view CouponView) {
	m.raw(`<div`)
	m.attr("id", CouponPanelID)
	m.raw(` class="coupon coupon-failed" data-status="failed" role="alert">`)
	m.icon(icons.IDAlert, "icon-lg")
	m.raw(`<h3>`)
	m.text(T(view.Loc, "promo.coupon.failed_title"))
	m.raw(`</h3>`)
	if view.Reason != "" {
		m.raw(`<p class="coupon-reason">`)
		m.text(view.Reason)
		m.raw(`</p>`)
	}
	m.raw(`<button type="button" class="coupon-button"`)
	m.attr("hx-post", routepath.CouponRetryFor(view.PageID))
	m.attr("hx-target", "#"+CouponPanelID)
	m.raw(` hx-swap="outerHTML" hx-disabled-elt="this"><span>`)
	m.text(T(view.Loc, "promo.coupon.retry"))
	m.raw(`</span></button></div>`)
}
