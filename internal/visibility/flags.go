// Package visibility derives the page chrome and reveal flags from scroll
// and intersection signals reported by the browser.
package visibility

// DefaultNavThreshold is the scroll offset, in CSS pixels, past which the
// navigation bar switches to its scrolled chrome.
const DefaultNavThreshold = 50.0

// NavChrome tracks whether the page is scrolled past Threshold. It follows
// the latest offset in both directions.
type NavChrome struct {
	Threshold float64
	scrolled  bool
}

// Observe records offset and returns the resulting flag: true only when
// offset is strictly greater than Threshold.
func (n *NavChrome) Observe(offset float64) bool {
	n.scrolled = offset > n.Threshold
	return n.scrolled
}

// Scrolled returns the last observed flag.
func (n *NavChrome) Scrolled() bool {
	return n.scrolled
}

// RevealLatch becomes true the first time its region intersects the
// viewport and stays true.
type RevealLatch struct {
	revealed bool
}

// Observe records an intersection report and returns the latched flag.
func (l *RevealLatch) Observe(intersecting bool) bool {
	if intersecting {
		l.revealed = true
	}
	return l.revealed
}

// Revealed returns the latched flag.
func (l *RevealLatch) Revealed() bool {
	return l.revealed
}
