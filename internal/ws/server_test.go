package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedVersionDetectsDeletions(t *testing.T) {
	latest := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	before := feedVersion{count: 5, updatedAt: latest}

	// Deleting the newest order can leave max(updated_at) lower, deleting an
	// older one leaves it untouched; the count moves either way.
	afterDelete := feedVersion{count: 4, updatedAt: latest}
	assert.True(t, afterDelete.changedFrom(before))

	afterDeleteNewest := feedVersion{count: 4, updatedAt: latest.Add(-time.Hour)}
	assert.True(t, afterDeleteNewest.changedFrom(before))
}

func TestFeedVersionDetectsUpdates(t *testing.T) {
	latest := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	before := feedVersion{count: 5, updatedAt: latest}

	touched := feedVersion{count: 5, updatedAt: latest.Add(time.Second)}
	assert.True(t, touched.changedFrom(before))

	unchanged := feedVersion{count: 5, updatedAt: latest}
	assert.False(t, unchanged.changedFrom(before))
}

func TestFeedVersionEmptyTableIsStable(t *testing.T) {
	empty := feedVersion{}
	assert.False(t, empty.changedFrom(feedVersion{}), "an empty orders table must not rebroadcast every tick")
}
