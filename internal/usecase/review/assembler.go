package review

import (
	"sync"

	"github.com/zigzalgo/autoreview/internal/domain"
)

// Assembler aggregates per-segment annotation lists into one flat,
// ordered collection. Appends from concurrent segment workers are
// serialized by a mutex, and Flatten restores segment order by index
// rather than completion order, so parallel runs stay deterministic.
type Assembler struct {
	mu         sync.Mutex
	perSegment [][]domain.Annotation
}

// NewAssembler sizes the assembler for the given segment count.
func NewAssembler(segments int) *Assembler {
	return &Assembler{perSegment: make([][]domain.Annotation, segments)}
}

// Put records the annotations produced for the segment at index.
// Safe for concurrent use.
func (a *Assembler) Put(index int, annotations []domain.Annotation) {
	if index < 0 || index >= len(a.perSegment) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.perSegment[index] = annotations
}

// Flatten returns all annotations in segment order, preserving within
// each segment the order the locator produced them. No deduplication and
// no merging: each issue yields at most one annotation.
func (a *Assembler) Flatten() []domain.Annotation {
	a.mu.Lock()
	defer a.mu.Unlock()

	flat := make([]domain.Annotation, 0)
	for _, segment := range a.perSegment {
		flat = append(flat, segment...)
	}
	return flat
}
