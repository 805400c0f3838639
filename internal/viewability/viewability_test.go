package viewability

import (
	"sync"
	"testing"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTracker captures emitted telemetry for assertions
type recordingTracker struct {
	mu          sync.Mutex
	impressions []domain.Placement
	viewables   []time.Duration
	fallbacks   []string
}

func (t *recordingTracker) TrackImpression(placement domain.Placement, size, variant string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.impressions = append(t.impressions, placement)
}

func (t *recordingTracker) TrackViewable(placement domain.Placement, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewables = append(t.viewables, duration)
}

func (t *recordingTracker) TrackFallback(placement domain.Placement, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fallbacks = append(t.fallbacks, reason)
}

// saveDataHints simulates a constrained connection
type saveDataHints struct{ saveData bool }

func (h saveDataHints) SaveData() bool       { return h.saveData }
func (h saveDataHints) SlowConnection() bool { return false }

func newController(cfg Config, clock platform.Clock, tracker Tracker) *Controller {
	return NewController(cfg, clock, tracker, nil, Callbacks{})
}

func TestController_ImpressionSentOnce(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{Placement: domain.PlacementArticleTop}, clock, tracker)

	c.HandleEnter()
	require.True(t, c.ShouldRender())

	c.HandleLoad()
	c.HandleLoad()
	c.HandleLoad()

	assert.Len(t, tracker.impressions, 1, "duplicate load signals must not duplicate the impression")
	assert.True(t, c.IsLoaded())
}

func TestController_LoadDelayDefersRender(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{
		Placement: domain.PlacementHomeTop,
		LoadDelay: 500 * time.Millisecond,
	}, clock, tracker)

	c.HandleEnter()
	assert.False(t, c.ShouldRender(), "render must wait for the load delay")

	clock.Advance(500 * time.Millisecond)
	assert.True(t, c.ShouldRender())
}

func TestController_ViewableRequiresMinDuration(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{Placement: domain.PlacementArticleMiddle}, clock, tracker)

	// Short glance: below the 1s threshold
	c.HandleEnter()
	clock.Advance(300 * time.Millisecond)
	c.HandleExit()
	assert.Empty(t, tracker.viewables)

	// Long stay: counts
	c.HandleEnter()
	clock.Advance(2 * time.Second)
	c.HandleExit()

	require.Len(t, tracker.viewables, 1)
	assert.Equal(t, 2*time.Second, tracker.viewables[0])
}

func TestController_FallbackOnTimeout(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{
		Placement:       domain.PlacementCategoryTop,
		FallbackTimeout: 5 * time.Second,
	}, clock, tracker)

	c.HandleEnter()
	clock.Advance(5 * time.Second)

	assert.True(t, c.ShowFallback())
	require.Len(t, tracker.fallbacks, 1)
	assert.Equal(t, FallbackReasonTimeout, tracker.fallbacks[0])
}

func TestController_LoadCancelsFallbackTimeout(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{
		Placement:       domain.PlacementCategoryTop,
		FallbackTimeout: 5 * time.Second,
	}, clock, tracker)

	c.HandleEnter()
	clock.Advance(time.Second)
	c.HandleLoad()
	clock.Advance(10 * time.Second)

	assert.False(t, c.ShowFallback())
	assert.Empty(t, tracker.fallbacks)
}

func TestController_FallbackOnError(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{Placement: domain.PlacementFooter}, clock, tracker)

	c.HandleEnter()
	c.HandleError()

	assert.True(t, c.ShowFallback())
	require.Len(t, tracker.fallbacks, 1)
	assert.Equal(t, FallbackReasonError, tracker.fallbacks[0])
}

func TestController_SaveDataSuppressesRender(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := NewController(Config{
		Placement:       domain.PlacementMobileSticky,
		RespectSaveData: true,
	}, clock, tracker, saveDataHints{saveData: true}, Callbacks{})

	c.HandleEnter()

	// Intent is there, permission is not
	assert.False(t, c.ShouldRender())
	assert.True(t, c.IsVisible())
}

func TestController_CloseCancelsTimers(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	tracker := &recordingTracker{}
	c := newController(Config{
		Placement:       domain.PlacementArticleBottom,
		LoadDelay:       time.Second,
		FallbackTimeout: 5 * time.Second,
	}, clock, tracker)

	c.HandleEnter()
	c.Close()
	clock.Advance(time.Minute)

	assert.Zero(t, clock.PendingTimers(), "close must cancel every pending timer")
	assert.Empty(t, tracker.fallbacks)
	assert.Empty(t, tracker.impressions)
}
