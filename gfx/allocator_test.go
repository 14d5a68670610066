package gfx

import (
	"testing"
)

func TestAlign(t *testing.T) {
	if makeAlignUp(12, 3) != 12 {
		t.Fail()
	}

	if makeAlignUp(10, 3) != 12 {
		t.Fail()
	}
}

func TestAllocator(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	ra := a.Allocate(2048, 1)
	if ra != nil {
		t.Error("oversized allocation should fail")
	}

	ra = a.Allocate(512, 1)
	fa := ra
	if ra == nil {
		t.Error("failed 1st allocation")
	}

	ra = a.Allocate(768, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}

	ra = a.Allocate(500, 1)
	k := ra
	if ra == nil {
		t.Error("failed 2nd allocation")
	}

	ra = a.Allocate(50, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}

	ra = a.Allocate(5, 1)
	if ra == nil {
		t.Error("failed 3rd allocation")
	}

	ra = a.Allocate(20, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}

	a.Free(k)
	ra = a.Allocate(500, 1)
	if ra == nil {
		t.Error("failed to reuse freed block")
	}

	a.Free(fa)
	ra = a.Allocate(20, 1)
	if ra == nil {
		t.Error("failed to allocate in head gap")
	}

	ra = a.Allocate(40, 1)
	if ra == nil {
		t.Error("failed to allocate in head gap")
	}

	ra = a.Allocate(12, 1)
	if ra == nil {
		t.Error("failed to allocate in head gap")
	}

	ra = a.Allocate(500, 1)
	if ra != nil {
		t.Error("allocation past capacity should fail")
	}

	ra = a.Allocate(5, 1)
	if ra == nil {
		t.Error("failed final allocation")
	}
}

func TestAllocatorAlignment(t *testing.T) {
	a := LinearAllocator{Size: 256}

	first := a.Allocate(10, 1)
	if first == nil {
		t.Fatal("failed allocation")
	}

	second := a.Allocate(16, 64)
	if second == nil {
		t.Fatal("failed aligned allocation")
	}
	if second.Offset%64 != 0 {
		t.Errorf("offset %d is not 64 byte aligned", second.Offset)
	}
}

func TestAllocatorAccounting(t *testing.T) {
	a := LinearAllocator{Size: 128}

	x := a.Allocate(32, 1)
	y := a.Allocate(64, 1)
	if x == nil || y == nil {
		t.Fatal("failed allocation")
	}
	if a.Allocated() != 96 {
		t.Errorf("expected 96 bytes allocated, got %d", a.Allocated())
	}

	a.Free(x)
	if a.Allocated() != 64 {
		t.Errorf("expected 64 bytes allocated after free, got %d", a.Allocated())
	}
}
