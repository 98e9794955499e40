package xloper

import (
	"math"
	"time"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ============================================================================
//                              序列号时间
// ============================================================================

const (
	msPerDay = 86_400_000

	// phantomLeapDay 宿主沿用的 1900-02-29，该日并不存在
	phantomLeapDay = 60
)

// serialEpoch 序列号纪元 1899-12-31 00:00（墙上时间，时区另行解析）
var serialEpoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

// SerialToTime 将宿主日期序列号按 loc 的墙上时间解析为 UTC 时间
//
//   - v < 0 → Error("#VALUE!")
//   - 60（虚构的 1900-02-29）→ 1900-03-01
//   - ≥ 61 → 整体前移一天
//   - 小数部分换算为毫秒
//   - 墙上时间在 loc 中有歧义 → Error("#AMBIGUOUS_TIME")，不存在 → Error("#VALUE!")
func SerialToTime(v float64, loc *time.Location) types.Value {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return types.Error(ErrValue.String())
	}
	if loc == nil {
		loc = time.Local
	}

	day, frac := math.Modf(v)
	if day >= phantomLeapDay+1 {
		day--
	}
	ms := math.Round(frac * msPerDay)
	naive := serialEpoch.AddDate(0, 0, int(day)).Add(time.Duration(ms) * time.Millisecond)

	t, n := resolveLocal(naive, loc)
	switch n {
	case 1:
		return types.DateTime(t)
	case 0:
		return types.Error(ErrValue.String())
	default:
		return types.Error("#AMBIGUOUS_TIME")
	}
}

// TimeToSerial 将时间按 loc 的墙上时间换算为宿主日期序列号
//
// 1900-03-01 及之后的日期映射到宿主编号（跳过虚构闰日），早于纪元时返回 false。
func TimeToSerial(t time.Time, loc *time.Location) (float64, bool) {
	if loc == nil {
		loc = time.Local
	}
	w := t.In(loc)
	naive := time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
	if naive.Before(serialEpoch) {
		return 0, false
	}
	elapsed := naive.Sub(serialEpoch)
	days := float64(elapsed / (24 * time.Hour))
	rem := elapsed % (24 * time.Hour)
	if days >= phantomLeapDay {
		days++
	}
	return days + float64(rem.Milliseconds())/msPerDay, true
}

// resolveLocal 将墙上时间 naive（以 UTC 表示）解析为 loc 中的时刻
//
// 返回匹配的时刻个数：0 表示该墙上时间不存在，2 表示有歧义。
func resolveLocal(naive time.Time, loc *time.Location) (time.Time, int) {
	var (
		found time.Time
		count int
		seen  = make(map[int]bool, 3)
	)
	for _, probe := range []time.Time{naive.Add(-36 * time.Hour), naive, naive.Add(36 * time.Hour)} {
		_, off := probe.In(loc).Zone()
		if seen[off] {
			continue
		}
		seen[off] = true

		cand := naive.Add(-time.Duration(off) * time.Second)
		if sameWall(cand.In(loc), naive) {
			if count == 0 || !cand.Equal(found) {
				count++
			}
			found = cand
		}
	}
	if count == 1 {
		return found.UTC(), 1
	}
	return time.Time{}, count
}

func sameWall(t, naive time.Time) bool {
	return t.Year() == naive.Year() && t.YearDay() == naive.YearDay() &&
		t.Hour() == naive.Hour() && t.Minute() == naive.Minute() &&
		t.Second() == naive.Second() && t.Nanosecond() == naive.Nanosecond()
}
