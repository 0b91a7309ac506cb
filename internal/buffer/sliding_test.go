package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlideSkipsCompactionWhenResidualExceedsReserve(t *testing.T) {
	b := New(16)
	b.Produce(10)
	b.Consume(8) // readable region now [8,10), 2 bytes; residual = 6

	copy(b.Data(), []byte{0xAA, 0xBB})

	hasRoom := b.Slide(4) // residual(6) > reserve(4): no compaction needed
	assert.True(t, hasRoom)
	assert.Equal(t, 8, b.Start())
}

func TestSlideCompactsAndPreservesData(t *testing.T) {
	b := New(16)
	b.Produce(14)
	b.Consume(12) // [12,14) readable, residual = 2

	b.data[12] = 0x11
	b.data[13] = 0x22

	hasRoom := b.Slide(4) // residual(2) <= reserve(4) -> compact
	assert.Equal(t, 0, b.Start())
	assert.Equal(t, 2, b.End())
	assert.Equal(t, []byte{0x11, 0x22}, b.Data())
	assert.True(t, hasRoom) // after compaction residual = 14 > 4
}

func TestSlideReturnsFalseWhenStillSaturated(t *testing.T) {
	b := New(8)
	b.Produce(8) // full, residual = 0
	hasRoom := b.Slide(4)
	assert.False(t, hasRoom) // start==0 already, nothing to compact, residual stays 0
}

func TestConsumeAndProduceAdvanceCursors(t *testing.T) {
	b := New(8)
	require.Equal(t, 8, b.ResidualSize())
	b.Produce(3)
	assert.Equal(t, 3, b.DataSize())
	assert.Equal(t, 5, b.ResidualSize())
	b.Consume(2)
	assert.Equal(t, 1, b.DataSize())
}

func TestSlideInvariantAcrossRandomSequence(t *testing.T) {
	b := New(32)
	var shadow []byte

	ops := []struct {
		produce, consume, slideReserve int
	}{
		{produce: 10}, {consume: 4}, {produce: 8}, {slideReserve: 6},
		{consume: 6}, {produce: 10}, {slideReserve: 2}, {consume: 18},
	}

	for _, op := range ops {
		if op.produce > 0 {
			for i := 0; i < op.produce; i++ {
				shadow = append(shadow, byte(len(shadow)))
			}
			copy(b.Residual()[:op.produce], shadow[len(shadow)-op.produce:])
			b.Produce(op.produce)
		}
		if op.consume > 0 {
			shadow = shadow[op.consume:]
			b.Consume(op.consume)
		}
		if op.slideReserve > 0 || (op.produce == 0 && op.consume == 0) {
			b.Slide(op.slideReserve)
		}
		assert.Equal(t, shadow, b.Data())
	}
}
