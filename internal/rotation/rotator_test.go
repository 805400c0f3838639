package rotation

import (
	"testing"
	"time"

	"FTJ-Ads-Backend/internal/domain"
	"FTJ-Ads-Backend/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAds(n int) []*domain.Ad {
	ads := make([]*domain.Ad, n)
	for i := range ads {
		ads[i] = &domain.Ad{
			ID:        string(rune('a' + i)),
			Title:     "Ad " + string(rune('A'+i)),
			Status:    domain.AdStatusActive,
			Placement: domain.PlacementHomeTop,
		}
	}
	return ads
}

func TestRotator_CyclesOnInterval(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	r := NewRotator(clock, 10*time.Second, nil)
	defer r.Stop()

	ads := makeAds(3)
	r.SetAds(ads)
	require.Equal(t, 0, r.Index())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, r.Index())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 2, r.Index())

	// Wraps around
	clock.Advance(10 * time.Second)
	assert.Equal(t, 0, r.Index())
	assert.Same(t, ads[0], r.Current())
}

func TestRotator_SingleAdNeverRotates(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	r := NewRotator(clock, 10*time.Second, nil)
	defer r.Stop()

	r.SetAds(makeAds(1))
	clock.Advance(time.Minute)

	assert.Equal(t, 0, r.Index())
	assert.Zero(t, clock.PendingTimers(), "a single ad must not keep a timer armed")
}

func TestRotator_PauseAndResume(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	r := NewRotator(clock, 10*time.Second, nil)
	defer r.Stop()

	r.SetAds(makeAds(2))

	r.Pause()
	clock.Advance(time.Minute)
	assert.Equal(t, 0, r.Index(), "rotation must not advance while hovered")

	r.Resume()
	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, r.Index())
}

func TestRotator_IndexResetsWhenCountChanges(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	r := NewRotator(clock, 10*time.Second, nil)
	defer r.Stop()

	r.SetAds(makeAds(3))
	clock.Advance(20 * time.Second)
	require.Equal(t, 2, r.Index())

	// Shrinking the set resets the index before anything can read it
	r.SetAds(makeAds(2))
	assert.Equal(t, 0, r.Index())

	// Same count keeps the index
	clock.Advance(10 * time.Second)
	require.Equal(t, 1, r.Index())
	r.SetAds(makeAds(2))
	assert.Equal(t, 1, r.Index())
}

func TestRotator_OnChangeCallback(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	var seen []int
	r := NewRotator(clock, 10*time.Second, func(index int) {
		seen = append(seen, index)
	})
	defer r.Stop()

	r.SetAds(makeAds(2))
	clock.Advance(30 * time.Second)

	assert.Equal(t, []int{1, 0, 1}, seen)
}

func TestRotator_StopCancelsTimer(t *testing.T) {
	clock := platform.NewFakeClock(time.Now())
	r := NewRotator(clock, 10*time.Second, nil)

	r.SetAds(makeAds(2))
	r.Stop()
	clock.Advance(time.Minute)

	assert.Equal(t, 0, r.Index())
	assert.Zero(t, clock.PendingTimers())
}
