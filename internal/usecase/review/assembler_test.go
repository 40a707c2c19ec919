package review_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

func ann(path, body string) domain.Annotation {
	return domain.Annotation{Path: path, Position: domain.IntPtr(0), Body: body}
}

func TestAssembler_PreservesSegmentOrder(t *testing.T) {
	assembler := review.NewAssembler(3)

	// Out-of-order puts, as parallel workers would do.
	assembler.Put(2, []domain.Annotation{ann("c.go", "third")})
	assembler.Put(0, []domain.Annotation{ann("a.go", "first"), ann("a.go", "second")})
	assembler.Put(1, nil)

	flat := assembler.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, "first", flat[0].Body)
	assert.Equal(t, "second", flat[1].Body)
	assert.Equal(t, "third", flat[2].Body)
}

func TestAssembler_IgnoresOutOfRangeIndex(t *testing.T) {
	assembler := review.NewAssembler(1)
	assembler.Put(-1, []domain.Annotation{ann("x", "x")})
	assembler.Put(5, []domain.Annotation{ann("x", "x")})

	assert.Empty(t, assembler.Flatten())
}

func TestAssembler_ConcurrentPuts(t *testing.T) {
	const n = 64
	assembler := review.NewAssembler(n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assembler.Put(i, []domain.Annotation{ann("f.go", "body")})
		}(i)
	}
	wg.Wait()

	assert.Len(t, assembler.Flatten(), n)
}

func TestAssembler_EmptyFlattenIsNotNil(t *testing.T) {
	assembler := review.NewAssembler(2)
	flat := assembler.Flatten()
	require.NotNil(t, flat)
	assert.Empty(t, flat)
}
