package metrics

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// RateMeter - 速率计算器
// ============================================================================

// windowSeconds 滑动窗口的桶数，每桶 1 秒
const windowSeconds = 60

// RateMeter 速率计算器（基于滑动窗口）
//
// 使用 60 个 1 秒桶计算最近 60 秒的平均速率，另外记录累计总量。
// 可以安全地并发使用。
type RateMeter struct {
	mu       sync.Mutex
	clk      clock.Clock
	buckets  [windowSeconds]int64
	lastIdx  int
	lastTime time.Time
	total    int64
}

// NewRateMeter 创建速率计算器，clk 为 nil 时使用系统时钟
func NewRateMeter(clk clock.Clock) *RateMeter {
	if clk == nil {
		clk = clock.New()
	}
	return &RateMeter{
		clk:      clk,
		lastTime: clk.Now(),
	}
}

// Mark 把 n 计入当前桶
func (r *RateMeter) Mark(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(r.clk.Now())
	r.buckets[r.lastIdx] += n
	r.total += n
}

// Rate 返回最近 60 秒的平均速率（每秒）
func (r *RateMeter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(r.clk.Now())
	var sum int64
	for _, v := range r.buckets {
		sum += v
	}
	return float64(sum) / windowSeconds
}

// Total 返回累计总量
func (r *RateMeter) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset 清空窗口与累计总量
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = [windowSeconds]int64{}
	r.lastIdx = 0
	r.lastTime = r.clk.Now()
	r.total = 0
}

// advance 把窗口移动到 now，清空跨过的桶；调用者持有锁
func (r *RateMeter) advance(now time.Time) {
	elapsed := now.Sub(r.lastTime)
	if elapsed < time.Second {
		return
	}

	steps := int(elapsed / time.Second)
	if steps >= windowSeconds {
		r.buckets = [windowSeconds]int64{}
		r.lastIdx = 0
	} else {
		for i := 0; i < steps; i++ {
			r.lastIdx = (r.lastIdx + 1) % windowSeconds
			r.buckets[r.lastIdx] = 0
		}
	}
	// 按整秒对齐，避免桶边界漂移
	r.lastTime = r.lastTime.Add(time.Duration(steps) * time.Second)
}
