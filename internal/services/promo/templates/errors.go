package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/louisbranch/luxereward/internal/platform/icons"
)

// ErrorPanel renders a localized error inside the coupon panel slot.
func ErrorPanel(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.raw(`<div`)
		m.attr("id", CouponPanelID)
		m.raw(` class="coupon coupon-failed" data-status="error" role="alert">`)
		m.icon(icons.IDAlert, "icon-lg")
		m.raw(`<p class="coupon-reason">`)
		m.text(message)
		m.raw(`</p></div>`)
		return m.err
	})
}
