package timing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idproof/internal/proofing"
)

// fakeClock advances by step on every read.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTime(t *testing.T) {
	t.Run("records stages in execution order", func(t *testing.T) {
		timer := New()
		stages := []proofing.Stage{proofing.StageResolution, proofing.StageStateID, proofing.StageAddress}
		for _, s := range stages {
			_, err := Time(timer, s, func() (int, error) { return 1, nil })
			require.NoError(t, err)
		}

		results := timer.Results()
		require.Len(t, results, len(stages))
		for i, e := range results {
			assert.Equal(t, stages[i], e.Stage)
			assert.GreaterOrEqual(t, e.Millis(), 0.0)
		}
	})

	t.Run("records even when the operation fails", func(t *testing.T) {
		timer := New()
		timer.now = fakeClock(5 * time.Millisecond)
		boom := errors.New("boom")

		v, err := Time(timer, proofing.StageResolution, func() (string, error) { return "partial", boom })
		assert.Same(t, boom, err)
		assert.Equal(t, "partial", v)

		results := timer.Results()
		require.Len(t, results, 1)
		assert.Equal(t, 5.0, results[0].Millis())
	})

	t.Run("repeated stage keeps position and overwrites duration", func(t *testing.T) {
		timer := New()
		timer.Record(proofing.StageResolution, time.Second)
		timer.Record(proofing.StageStateID, time.Second)
		timer.Record(proofing.StageResolution, 2*time.Second)

		results := timer.Results()
		require.Len(t, results, 2)
		assert.Equal(t, proofing.StageResolution, results[0].Stage)
		assert.Equal(t, 2*time.Second, results[0].Duration)

		d, ok := timer.Duration(proofing.StageResolution)
		assert.True(t, ok)
		assert.Equal(t, 2*time.Second, d)
		_, ok = timer.Duration(proofing.StageLiveness)
		assert.False(t, ok)
	})

	t.Run("results are a snapshot", func(t *testing.T) {
		timer := New()
		timer.Record(proofing.StageAddress, time.Millisecond)
		snap := timer.Results()
		snap[0].Duration = time.Hour
		assert.Equal(t, time.Millisecond, timer.Results()[0].Duration)
	})
}
