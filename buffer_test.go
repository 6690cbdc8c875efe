package proofread_test

import (
	"testing"

	"github.com/fwojciec/proofread"
	"github.com/stretchr/testify/assert"
)

func TestBuffer(t *testing.T) {
	t.Parallel()

	t.Run("zero value is empty", func(t *testing.T) {
		t.Parallel()
		var b proofread.Buffer
		assert.Equal(t, "", b.Snapshot())
		assert.Equal(t, "", b.Pending())
		assert.Equal(t, "", b.Fold())
	})

	t.Run("append stays pending until fold", func(t *testing.T) {
		t.Parallel()
		var b proofread.Buffer
		b.Append("Hel")
		b.Append("lo")
		assert.Equal(t, "", b.Snapshot())
		assert.Equal(t, "Hello", b.Pending())

		assert.Equal(t, "Hello", b.Fold())
		assert.Equal(t, "Hello", b.Snapshot())
		assert.Equal(t, "", b.Pending())
	})

	t.Run("snapshots grow monotonically", func(t *testing.T) {
		t.Parallel()
		var b proofread.Buffer
		var prev string
		for _, chunk := range []string{"The ", "cat ", "", "sat", "."} {
			b.Append(chunk)
			got := b.Fold()
			assert.True(t, len(got) >= len(prev))
			assert.Equal(t, prev, got[:len(prev)])
			prev = got
		}
		assert.Equal(t, "The cat sat.", prev)
	})
}
