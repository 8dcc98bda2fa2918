// Package routepath defines the promo service's HTTP routes.
package routepath

import "net/url"

const (
	Root         = "/"
	Health       = "/up"
	StaticPrefix = "/static/"

	Coupon      = "/coupon"
	CouponIssue = "/coupon/issue"
	CouponRetry = "/coupon/retry"
	Viewport    = "/viewport"
)

// PageParam names the form and query field carrying the page session id.
const PageParam = "page"

// CouponFor returns the coupon fragment URL for a page session.
func CouponFor(pageID string) string {
	return withPage(Coupon, pageID)
}

// CouponIssueFor returns the issue URL for a page session.
func CouponIssueFor(pageID string) string {
	return withPage(CouponIssue, pageID)
}

// CouponRetryFor returns the retry URL for a page session.
func CouponRetryFor(pageID string) string {
	return withPage(CouponRetry, pageID)
}

// Static returns the URL of an embedded asset, served from assetBaseURL
// when one is configured.
func Static(assetBaseURL, name string) string {
	if assetBaseURL == "" {
		return StaticPrefix + name
	}
	joined, err := url.JoinPath(assetBaseURL, name)
	if err != nil {
		return StaticPrefix + name
	}
	return joined
}

func withPage(path, pageID string) string {
	if pageID == "" {
		return path
	}
	return path + "?" + url.Values{PageParam: {pageID}}.Encode()
}
