package gfx

import (
	"fmt"
	"log"

	"github.com/docker/go-units"
)

// Allocation is a sub-range of a resource pool's device memory. Object
// carries the resource bound at this range so pools can destroy their
// contents.
type Allocation struct {
	Offset uint64
	Size   uint64
	Object IDestructable
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// Allocator hands out sub-ranges of a fixed block of memory.
type Allocator interface {
	Allocate(size uint64, align uint64) *Allocation
	Free(a *Allocation)
	LogDetails()
	DestroyContents()
}

// LinearAllocator is a first-fit allocator over a fixed size block. It keeps
// allocations sorted by offset and fills gaps left by frees.
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation
}

func makeAlignUp(a uint64, align uint64) uint64 {
	m := a % align
	if m == 0 {
		return a
	}
	return (a - m) + align
}

func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Allocate finds space for size bytes at the requested alignment, returning
// nil when no gap is large enough.
func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if align == 0 {
		align = 1
	}

	if len(p.allocs) == 0 {
		if size > p.Size {
			return nil
		}
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	// Head gap.
	if p.allocs[0].Offset > size {
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append([]*Allocation{na}, p.allocs...)
		return na
	}

	// Gaps between neighbours.
	// FIXME: first fit; could examine all gaps and choose the tightest
	for i := 0; i+1 < len(p.allocs); i++ {
		c := p.allocs[i]
		n := p.allocs[i+1]

		l := makeAlignUp(c.Offset+c.Size, align)
		h := n.Offset

		if h >= l && h-l >= size {
			na := &Allocation{Offset: l, Size: size}
			p.allocs = append(p.allocs[:i+1], append([]*Allocation{na}, p.allocs[i+1:]...)...)
			return na
		}
	}

	// Tail.
	last := p.allocs[len(p.allocs)-1]
	nl := makeAlignUp(last.Offset+last.Size, align)
	if p.Size-nl >= size {
		na := &Allocation{Offset: nl, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	return nil
}

// Allocated returns the total number of bytes currently allocated.
func (p *LinearAllocator) Allocated() uint64 {
	var total uint64
	for _, a := range p.allocs {
		total += a.Size
	}
	return total
}

// LogDetails logs a summary of the allocator's usage.
func (p *LinearAllocator) LogDetails() {
	used := p.Allocated()
	log.Printf("  %s used of %s in %d allocations",
		units.HumanSize(float64(used)), units.HumanSize(float64(p.Size)), len(p.allocs))
	for _, a := range p.allocs {
		log.Printf("    %s %v", a, a.Object)
	}
}

// DestroyContents destroys every object still bound to an allocation.
// Destroying an object frees its allocation, so iterate over a copy.
func (p *LinearAllocator) DestroyContents() {
	allocs := make([]*Allocation, len(p.allocs))
	copy(allocs, p.allocs)
	for _, a := range allocs {
		if a.Object != nil {
			a.Object.Destroy()
		}
	}
	p.allocs = nil
}

func (p *LinearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
