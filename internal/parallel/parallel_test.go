package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		n    int
	}{
		{"default", DefaultConfig(), 1000},
		{"sequential", Config{Enabled: false}, 100},
		{"small chunk fallback", Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}, 10},
		{"more workers than items", Config{Enabled: true, NumWorkers: 16, MinChunkSize: 1}, 3},
		{"empty", DefaultConfig(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter atomic.Int64
			seen := make([]atomic.Bool, tt.n)
			For(tt.n, func(i int) {
				counter.Add(1)
				seen[i].Store(true)
			}, tt.cfg)

			assert.Equal(t, int64(tt.n), counter.Load())
			for i := range seen {
				assert.True(t, seen[i].Load(), "index %d not visited", i)
			}
		})
	}
}

func TestForErr(t *testing.T) {
	boom := errors.New("boom")
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	err := ForErr(100, func(i int) error {
		if i == 57 {
			return boom
		}
		return nil
	}, cfg)
	require.ErrorIs(t, err, boom)

	err = ForErr(100, func(int) error { return nil }, cfg)
	require.NoError(t, err)
}

func TestForErr_SequentialStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	err := ForErr(10, func(i int) error {
		calls++
		if i == 2 {
			return boom
		}
		return nil
	}, Config{Enabled: false})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}
