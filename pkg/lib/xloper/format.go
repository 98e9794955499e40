package xloper

import (
	"fmt"
	"strconv"
)

// String 实现 fmt.Stringer，按单元格显示习惯格式化
func (v *Value) String() string {
	switch v.kind {
	case KindErr:
		return v.err.String()
	case KindInt:
		return strconv.FormatInt(int64(v.w), 10)
	case KindMissing:
		return "#MISSING"
	case KindMulti:
		return "#MULTI"
	case KindNil:
		return "#NIL"
	case KindNum:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindStr:
		s, err := decodeUTF16(v.Units())
		if err != nil {
			return "#STRING_ERR: " + err.Error()
		}
		return s
	case KindSRef:
		return fmt.Sprintf("Sref:(%d,%d) -> (%d,%d)",
			v.sref.RowFirst, v.sref.ColFirst, v.sref.RowLast, v.sref.ColLast)
	case KindRef:
		return "#REF"
	case KindFlow:
		return "#FLOW"
	case KindBigData:
		return "#BIG_DATA"
	default:
		return fmt.Sprintf("#UNKNOWN%d", v.unknown)
	}
}
