package visibility

import (
	"sort"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/luxereward/internal/platform/errors"
)

// RegionNav names the navigation chrome flag in Change notifications.
const RegionNav = "nav"

// Change reports a flag edge for one region.
type Change struct {
	Region  string
	Visible bool
}

// Flags is the render instruction set for one page.
type Flags struct {
	NavScrolled bool            `json:"navScrolled"`
	Revealed    map[string]bool `json:"revealed"`
}

// Observer owns the nav flag and the reveal latches of one mounted page.
type Observer struct {
	mu       sync.Mutex
	nav      NavChrome
	sections map[string]*RevealLatch
	mounts   map[string]int
	subs     []subscriber
	nextID   int
	closed   bool
}

type subscriber struct {
	id int
	fn func(Change)
}

// NewObserver returns an observer whose nav flag flips past threshold.
// A non-positive threshold uses DefaultNavThreshold.
func NewObserver(threshold float64) *Observer {
	if threshold <= 0 {
		threshold = DefaultNavThreshold
	}
	return &Observer{
		nav:      NavChrome{Threshold: threshold},
		sections: map[string]*RevealLatch{},
		mounts:   map[string]int{},
	}
}

// Mount starts observing region and returns the function that stops it.
// Mounts are counted: the region stays observed until every unmount ran.
func (o *Observer) Mount(region string) (unmount func(), err error) {
	region = strings.TrimSpace(region)
	if region == "" || region == RegionNav {
		return nil, apperrors.WithMetadata(apperrors.CodeViewportUnknownRegion, "region name is reserved or empty", map[string]string{"Region": region})
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, apperrors.WithMetadata(apperrors.CodeViewportUnknownRegion, "observer is closed", map[string]string{"Region": region})
	}
	if _, ok := o.sections[region]; !ok {
		o.sections[region] = &RevealLatch{}
	}
	o.mounts[region]++
	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if o.mounts[region] <= 1 {
				delete(o.mounts, region)
				delete(o.sections, region)
				return
			}
			o.mounts[region]--
		})
	}, nil
}

// Scroll records the page's vertical scroll offset.
func (o *Observer) Scroll(offset float64) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	before := o.nav.Scrolled()
	after := o.nav.Observe(offset)
	subs := o.subscribersLocked(before != after)
	o.mu.Unlock()

	notify(subs, Change{Region: RegionNav, Visible: after})
}

// Intersect records whether region currently intersects the viewport.
func (o *Observer) Intersect(region string, intersecting bool) error {
	region = strings.TrimSpace(region)
	o.mu.Lock()
	latch, ok := o.sections[region]
	if !ok || o.closed {
		o.mu.Unlock()
		return apperrors.WithMetadata(apperrors.CodeViewportUnknownRegion, "region is not mounted", map[string]string{"Region": region})
	}
	before := latch.Revealed()
	after := latch.Observe(intersecting)
	subs := o.subscribersLocked(before != after)
	o.mu.Unlock()

	notify(subs, Change{Region: region, Visible: after})
	return nil
}

// Flags returns the current render instructions.
func (o *Observer) Flags() Flags {
	o.mu.Lock()
	defer o.mu.Unlock()
	revealed := make(map[string]bool, len(o.sections))
	for region, latch := range o.sections {
		revealed[region] = latch.Revealed()
	}
	return Flags{NavScrolled: o.nav.Scrolled(), Revealed: revealed}
}

// Regions returns the mounted region names in sorted order.
func (o *Observer) Regions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.sections))
	for region := range o.sections {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

// Subscribe registers fn for flag edges and returns its removal function.
func (o *Observer) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return func() {}
	}
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscriber{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Close unmounts every region and drops every subscriber.
func (o *Observer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.subs = nil
	o.sections = map[string]*RevealLatch{}
	o.mounts = map[string]int{}
}

func (o *Observer) subscribersLocked(changed bool) []subscriber {
	if !changed || len(o.subs) == 0 {
		return nil
	}
	return append([]subscriber(nil), o.subs...)
}

func notify(subs []subscriber, change Change) {
	for _, s := range subs {
		s.fn(change)
	}
}
