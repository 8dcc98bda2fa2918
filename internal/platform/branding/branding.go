// Package branding holds product naming shared across surfaces.
package branding

// AppName is the product name shown in page chrome.
const AppName = "LUXE REWARD"

// CouponCode is the literal reward code the reference issuer hands out.
const CouponCode = "LUXE-2024-EXCL"

// CouponExpiryDays is the validity window shown with an issued code.
const CouponExpiryDays = 30
