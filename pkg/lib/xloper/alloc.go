package xloper

import (
	"sync"
	"unsafe"
)

// Allocator 本侧堆负载的分配器
//
// 所有 OwnedSelf 的字符串缓冲区与 Multi 数组都经由 Allocator 分配和释放，
// 因此可以替换为带统计的实现来验证"恰好释放一次"。
type Allocator interface {
	// AllocUnits 分配 n 个 UTF-16 码元
	AllocUnits(n int) []uint16
	// FreeUnits 释放 AllocUnits 返回的缓冲区
	FreeUnits(buf []uint16) error
	// AllocCells 分配 n 个元素，初始为 Nil
	AllocCells(n int) []Value
	// FreeCells 释放 AllocCells 返回的数组
	FreeCells(cells []Value) error
}

// ============================================================================
//                              HeapAllocator
// ============================================================================

// HeapAllocator 基于 Go 堆的默认分配器
//
// 释放时清零缓冲区，内存本身交给 GC 回收。
type HeapAllocator struct{}

var _ Allocator = HeapAllocator{}

// DefaultAllocator 进程级默认分配器
var DefaultAllocator Allocator = HeapAllocator{}

// AllocUnits 实现 Allocator
func (HeapAllocator) AllocUnits(n int) []uint16 { return make([]uint16, n, max(n, 1)) }

// FreeUnits 实现 Allocator
func (HeapAllocator) FreeUnits(buf []uint16) error {
	clear(buf)
	return nil
}

// AllocCells 实现 Allocator
func (HeapAllocator) AllocCells(n int) []Value { return make([]Value, n, max(n, 1)) }

// FreeCells 实现 Allocator
func (HeapAllocator) FreeCells(cells []Value) error {
	clear(cells)
	return nil
}

// ============================================================================
//                              TrackingAllocator
// ============================================================================

// TrackingAllocator 记录每个存活缓冲区的分配器
//
// 用于测试与诊断：重复释放返回 ErrDoubleFree，释放非本分配器的缓冲区返回
// ErrForeignFree。并发安全。
type TrackingAllocator struct {
	mu     sync.Mutex
	live   map[unsafe.Pointer]struct{}
	freed  map[unsafe.Pointer]struct{}
	allocs int
	frees  int
	faults int
}

var _ Allocator = (*TrackingAllocator)(nil)

// NewTrackingAllocator 创建统计分配器
func NewTrackingAllocator() *TrackingAllocator {
	return &TrackingAllocator{
		live:  make(map[unsafe.Pointer]struct{}),
		freed: make(map[unsafe.Pointer]struct{}),
	}
}

// AllocUnits 实现 Allocator
func (t *TrackingAllocator) AllocUnits(n int) []uint16 {
	buf := make([]uint16, n, max(n, 1))
	t.track(unsafe.Pointer(unsafe.SliceData(buf)))
	return buf
}

// FreeUnits 实现 Allocator
func (t *TrackingAllocator) FreeUnits(buf []uint16) error {
	if err := t.release(unsafe.Pointer(unsafe.SliceData(buf))); err != nil {
		return err
	}
	clear(buf)
	return nil
}

// AllocCells 实现 Allocator
func (t *TrackingAllocator) AllocCells(n int) []Value {
	cells := make([]Value, n, max(n, 1))
	t.track(unsafe.Pointer(unsafe.SliceData(cells)))
	return cells
}

// FreeCells 实现 Allocator
func (t *TrackingAllocator) FreeCells(cells []Value) error {
	if err := t.release(unsafe.Pointer(unsafe.SliceData(cells))); err != nil {
		return err
	}
	clear(cells)
	return nil
}

func (t *TrackingAllocator) track(p unsafe.Pointer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[p] = struct{}{}
	delete(t.freed, p)
	t.allocs++
}

func (t *TrackingAllocator) release(p unsafe.Pointer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[p]; ok {
		delete(t.live, p)
		t.freed[p] = struct{}{}
		t.frees++
		return nil
	}
	t.faults++
	if _, ok := t.freed[p]; ok {
		return ErrDoubleFree
	}
	return ErrForeignFree
}

// Live 返回尚未释放的缓冲区数量
func (t *TrackingAllocator) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Allocs 返回累计分配次数
func (t *TrackingAllocator) Allocs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocs
}

// Frees 返回累计成功释放次数
func (t *TrackingAllocator) Frees() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frees
}

// Faults 返回重复释放与外部释放的累计次数
func (t *TrackingAllocator) Faults() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.faults
}
