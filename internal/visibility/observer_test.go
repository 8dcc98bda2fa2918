package visibility

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/luxereward/internal/platform/errors"
)

func mountAll(t *testing.T, o *Observer, regions ...string) {
	t.Helper()
	for _, region := range regions {
		if _, err := o.Mount(region); err != nil {
			t.Fatalf("Mount(%q) error = %v", region, err)
		}
	}
}

func TestObserverStartsHidden(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	mountAll(t, o, "about-limited", "about-premium")

	want := Flags{
		NavScrolled: false,
		Revealed:    map[string]bool{"about-limited": false, "about-premium": false},
	}
	if diff := cmp.Diff(want, o.Flags()); diff != "" {
		t.Fatalf("Flags() mismatch (-want +got):\n%s", diff)
	}
}

func TestObserverScrollScenario(t *testing.T) {
	t.Parallel()

	o := NewObserver(DefaultNavThreshold)
	var changes []Change
	o.Subscribe(func(c Change) { changes = append(changes, c) })

	o.Scroll(0)
	o.Scroll(200)
	o.Scroll(300)
	o.Scroll(0)

	want := []Change{
		{Region: RegionNav, Visible: true},
		{Region: RegionNav, Visible: false},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
	if o.Flags().NavScrolled {
		t.Fatal("NavScrolled = true after returning to top")
	}
}

func TestObserverRevealIsMonotonic(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	mountAll(t, o, "about-secure")
	var changes []Change
	o.Subscribe(func(c Change) { changes = append(changes, c) })

	for _, intersecting := range []bool{false, true, false, true, false} {
		if err := o.Intersect("about-secure", intersecting); err != nil {
			t.Fatalf("Intersect() error = %v", err)
		}
	}

	want := []Change{{Region: "about-secure", Visible: true}}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
	if !o.Flags().Revealed["about-secure"] {
		t.Fatal("about-secure hidden after reveal")
	}
}

func TestObserverRegionsAreIndependent(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	mountAll(t, o, "about-limited", "about-premium", "about-secure")
	if err := o.Intersect("about-premium", true); err != nil {
		t.Fatalf("Intersect() error = %v", err)
	}

	want := map[string]bool{"about-limited": false, "about-premium": true, "about-secure": false}
	if diff := cmp.Diff(want, o.Flags().Revealed); diff != "" {
		t.Fatalf("Revealed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"about-limited", "about-premium", "about-secure"}, o.Regions()); diff != "" {
		t.Fatalf("Regions() mismatch (-want +got):\n%s", diff)
	}
}

func TestObserverRejectsUnknownRegion(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	err := o.Intersect("hero", true)
	if got := apperrors.GetCode(err); got != apperrors.CodeViewportUnknownRegion {
		t.Fatalf("GetCode() = %q, want %q", got, apperrors.CodeViewportUnknownRegion)
	}
	if got := apperrors.GetMetadata(err)["Region"]; got != "hero" {
		t.Fatalf("metadata Region = %q, want %q", got, "hero")
	}
}

func TestObserverMountRejectsReservedNames(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	for _, region := range []string{"", "  ", RegionNav} {
		if _, err := o.Mount(region); err == nil {
			t.Fatalf("Mount(%q) error = nil, want error", region)
		}
	}
}

func TestObserverUnmountStopsObservation(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	unmount, err := o.Mount("about-limited")
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	unmount()
	unmount()

	if err := o.Intersect("about-limited", true); err == nil {
		t.Fatal("Intersect() after unmount error = nil, want error")
	}
	if _, ok := o.Flags().Revealed["about-limited"]; ok {
		t.Fatal("unmounted region still reported")
	}
}

func TestObserverDuplicateMountKeepsRegionUntilLastUnmount(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	first, err := o.Mount("card")
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	second, err := o.Mount("card")
	if err != nil {
		t.Fatalf("second Mount() error = %v", err)
	}

	first()
	first()
	if err := o.Intersect("card", true); err != nil {
		t.Fatalf("Intersect() with a live mount error = %v", err)
	}
	if !o.Flags().Revealed["card"] {
		t.Fatal("card not revealed")
	}

	second()
	if err := o.Intersect("card", true); err == nil {
		t.Fatal("Intersect() after last unmount error = nil, want error")
	}
}

func TestObserverUnsubscribe(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	calls := 0
	unsubscribe := o.Subscribe(func(Change) { calls++ })
	o.Scroll(100)
	unsubscribe()
	o.Scroll(0)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestObserverCloseReleasesSubscribers(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	mountAll(t, o, "about-limited")
	calls := 0
	o.Subscribe(func(Change) { calls++ })
	o.Close()

	o.Scroll(500)
	if err := o.Intersect("about-limited", true); err == nil {
		t.Fatal("Intersect() after Close error = nil, want error")
	}
	if calls != 0 {
		t.Fatalf("calls after Close = %d, want 0", calls)
	}
	if got := o.Subscribe(func(Change) { calls++ }); got == nil {
		t.Fatal("Subscribe() after Close returned nil unsubscribe")
	}
}

func TestObserverListenerMayReadFlags(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	var seen Flags
	o.Subscribe(func(Change) { seen = o.Flags() })
	o.Scroll(75)

	if !seen.NavScrolled {
		t.Fatal("listener observed NavScrolled = false")
	}
}

func TestObserverConcurrentReports(t *testing.T) {
	t.Parallel()

	o := NewObserver(0)
	mountAll(t, o, "about-limited", "about-premium")
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.Scroll(float64(i * 10))
			region := "about-limited"
			if i%2 == 1 {
				region = "about-premium"
			}
			if err := o.Intersect(region, true); err != nil {
				t.Errorf("Intersect() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	flags := o.Flags()
	if !flags.Revealed["about-limited"] || !flags.Revealed["about-premium"] {
		t.Fatalf("Revealed = %v, want both revealed", flags.Revealed)
	}
}
