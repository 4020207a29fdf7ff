package vehicle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonymarion/forkQGroundControl/internal/wire"
)

func TestResolveTime_ZeroUsesGroundClock(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, f.groundMs(), f.v.ResolveTime(0))

	f.clock.Advance(3 * time.Second)
	assert.Equal(t, f.groundMs(), f.v.ResolveTime(0))
}

func TestResolveTime_BootTimeOffsetCachedOnce(t *testing.T) {
	f := newFixture(t)
	ground := f.groundMs()

	// First boot-relative timestamp pins the offset.
	assert.Equal(t, ground, f.v.ResolveTime(1_000_000))

	// Later timestamps follow the onboard clock, not the ground clock.
	f.clock.Advance(5 * time.Second)
	assert.Equal(t, ground+1000, f.v.ResolveTime(2_000_000))

	// Even a backward ground-clock jump does not move the offset.
	f.clock.Advance(-time.Hour)
	assert.Equal(t, ground+2000, f.v.ResolveTime(3_000_000))
}

func TestResolveTime_EpochTimestampsPassThrough(t *testing.T) {
	f := newFixture(t)

	rawUs := uint64(1_700_000_000_000_000)
	assert.Equal(t, rawUs/1000, f.v.ResolveTime(rawUs))

	// Epoch timestamps do not pin an offset: the first boot-relative
	// one afterwards still anchors to the current ground time.
	f.clock.Advance(10 * time.Second)
	assert.Equal(t, f.groundMs(), f.v.ResolveTime(500_000))
}

func TestResolveTime_AttitudeStamped(t *testing.T) {
	f := newFixture(t, WithAttitudeStamped())
	ground := f.groundMs()

	f.v.HandleFrame(nil, testFrame(t, 7, 1, &wire.Attitude{TimeBootMs: 2000}))

	require.NotEmpty(t, f.drain())

	// Every timestamp now answers with the last attitude time.
	f.clock.Advance(time.Minute)
	assert.Equal(t, ground, f.v.ResolveTime(0))
	assert.Equal(t, ground, f.v.ResolveTime(999_999_999))

	// The reference variant keeps resolving normally.
	assert.Equal(t, ground+1000, f.v.ResolveReferenceTime(3_000_000))
}
