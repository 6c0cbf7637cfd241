package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLatest(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ts := time.Now()

	for i, temp := range []float64{1, 2, 3} {
		_, err := store.Save(ctx, types.SensorReading{
			DeviceID:    "s1",
			Temperature: types.Float(temp),
			Timestamp:   ts.Add(time.Duration(i%2) * time.Second),
		})
		require.NoError(t, err)
	}

	out, err := store.Latest(ctx, "s1")
	require.NoError(t, err)
	// Second reading is one second newer than the other two.
	assert.Equal(t, 2.0, *out.Temperature)
	assert.Equal(t, 3, store.Len())

	none, err := store.Latest(ctx, "s2")
	assert.NoError(t, err)
	assert.Nil(t, none)
}
