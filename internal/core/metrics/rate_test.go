package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

// TestRateMeter_Window 窗口滑动后旧桶不再计入
func TestRateMeter_Window(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeter(clk)

	r.Mark(30)
	assert.InDelta(t, 0.5, r.Rate(), 1e-9)

	clk.Add(30 * time.Second)
	r.Mark(30)
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)

	// 第一个桶移出窗口
	clk.Add(31 * time.Second)
	assert.InDelta(t, 0.5, r.Rate(), 1e-9)
	assert.Equal(t, int64(60), r.Total())

	// 超过整个窗口没有数据
	clk.Add(2 * time.Minute)
	assert.Zero(t, r.Rate())
	assert.Equal(t, int64(60), r.Total())
}

// TestRateMeter_SubSecond 同一秒内的记录落在同一个桶
func TestRateMeter_SubSecond(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeter(clk)

	for i := 0; i < 6; i++ {
		r.Mark(10)
		clk.Add(100 * time.Millisecond)
	}
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)
}

// TestRateMeter_Reset 重置清空窗口与总量
func TestRateMeter_Reset(t *testing.T) {
	r := NewRateMeter(clock.NewMock())
	r.Mark(5)
	r.Reset()
	assert.Zero(t, r.Rate())
	assert.Zero(t, r.Total())
}

// TestRateMeter_Concurrent 并发记录不丢失
func TestRateMeter_Concurrent(t *testing.T) {
	r := NewRateMeter(nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Mark(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), r.Total())
}
