// Package valuecodec 提供总线值的 protobuf 线格式编解码
//
// 编码等价于以下消息（字段号即线格式字段号）：
//
//	message Value {
//	  uint32 kind = 1;
//	  double f64 = 2;
//	  sint64 i64 = 3;
//	  string str = 4;           // String 与 Error 共用
//	  bool boolean = 5;
//	  google.protobuf.Timestamp time = 6;
//	}
//
// 未知字段被跳过，便于以后扩展。
package valuecodec

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

const (
	fieldKind protowire.Number = 1
	fieldF64  protowire.Number = 2
	fieldI64  protowire.Number = 3
	fieldStr  protowire.Number = 4
	fieldBool protowire.Number = 5
	fieldTime protowire.Number = 6
)

// wireTypes 已知字段的线类型，类型不符的字段按未知字段跳过
var wireTypes = map[protowire.Number]protowire.Type{
	fieldKind: protowire.VarintType,
	fieldF64:  protowire.Fixed64Type,
	fieldI64:  protowire.VarintType,
	fieldStr:  protowire.BytesType,
	fieldBool: protowire.VarintType,
	fieldTime: protowire.BytesType,
}

var (
	// ErrEmpty 输入为空
	ErrEmpty = errors.New("valuecodec: empty data")

	// ErrMalformed 线格式损坏
	ErrMalformed = errors.New("valuecodec: malformed data")

	// ErrUnknownKind 未知的值类型
	ErrUnknownKind = errors.New("valuecodec: unknown value kind")
)

// Marshal 编码总线值
func Marshal(v types.Value) ([]byte, error) {
	return Append(nil, v)
}

// Append 把 v 的编码追加到 b
func Append(b []byte, v types.Value) ([]byte, error) {
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.Kind()))

	switch v.Kind() {
	case types.KindNull:
	case types.KindF64:
		f, _ := v.AsF64()
		b = protowire.AppendTag(b, fieldF64, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(f))
	case types.KindI64:
		i, _ := v.AsI64()
		b = protowire.AppendTag(b, fieldI64, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(i))
	case types.KindString:
		s, _ := v.AsString()
		b = protowire.AppendTag(b, fieldStr, protowire.BytesType)
		b = protowire.AppendString(b, s)
	case types.KindError:
		s, _ := v.AsError()
		b = protowire.AppendTag(b, fieldStr, protowire.BytesType)
		b = protowire.AppendString(b, s)
	case types.KindBool:
		x, _ := v.AsBool()
		b = protowire.AppendTag(b, fieldBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(x))
	case types.KindDateTime:
		t, _ := v.AsDateTime()
		ts, err := proto.Marshal(timestamppb.New(t))
		if err != nil {
			return nil, fmt.Errorf("valuecodec: marshal timestamp: %w", err)
		}
		b = protowire.AppendTag(b, fieldTime, protowire.BytesType)
		b = protowire.AppendBytes(b, ts)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, v.Kind())
	}
	return b, nil
}

// decoded 解码过程中收集的字段
type decoded struct {
	kind    types.ValueKind
	hasKind bool
	f64     float64
	i64     int64
	str     string
	boolean bool
	ts      *timestamppb.Timestamp
}

// Unmarshal 解码总线值
func Unmarshal(data []byte) (types.Value, error) {
	if len(data) == 0 {
		return types.Null(), ErrEmpty
	}

	var d decoded
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return types.Null(), fmt.Errorf("%w: tag: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		n, err := d.field(num, typ, data)
		if err != nil {
			return types.Null(), err
		}
		data = data[n:]
	}

	if !d.hasKind {
		return types.Null(), fmt.Errorf("%w: missing kind", ErrMalformed)
	}
	return d.value()
}

func (d *decoded) field(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
	if wt, known := wireTypes[num]; !known || wt != typ {
		n := protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		return n, nil
	}

	switch num {
	case fieldKind, fieldI64, fieldBool:
		x, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		switch num {
		case fieldKind:
			if x > uint64(types.KindError) {
				return 0, fmt.Errorf("%w: %d", ErrUnknownKind, x)
			}
			d.kind, d.hasKind = types.ValueKind(x), true
		case fieldI64:
			d.i64 = protowire.DecodeZigZag(x)
		case fieldBool:
			d.boolean = protowire.DecodeBool(x)
		}
		return n, nil

	case fieldF64:
		x, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return 0, fmt.Errorf("%w: f64: %v", ErrMalformed, protowire.ParseError(n))
		}
		d.f64 = math.Float64frombits(x)
		return n, nil

	case fieldStr:
		s, n := protowire.ConsumeString(data)
		if n < 0 {
			return 0, fmt.Errorf("%w: str: %v", ErrMalformed, protowire.ParseError(n))
		}
		d.str = s
		return n, nil

	default: // fieldTime
		raw, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return 0, fmt.Errorf("%w: time: %v", ErrMalformed, protowire.ParseError(n))
		}
		ts := &timestamppb.Timestamp{}
		if err := proto.Unmarshal(raw, ts); err != nil {
			return 0, fmt.Errorf("%w: time: %v", ErrMalformed, err)
		}
		d.ts = ts
		return n, nil
	}
}

func (d *decoded) value() (types.Value, error) {
	switch d.kind {
	case types.KindNull:
		return types.Null(), nil
	case types.KindF64:
		return types.F64(d.f64), nil
	case types.KindI64:
		return types.I64(d.i64), nil
	case types.KindString:
		return types.String(d.str), nil
	case types.KindError:
		return types.Error(d.str), nil
	case types.KindBool:
		return types.Bool(d.boolean), nil
	case types.KindDateTime:
		if d.ts == nil {
			return types.Null(), fmt.Errorf("%w: datetime without time", ErrMalformed)
		}
		if err := d.ts.CheckValid(); err != nil {
			return types.Null(), fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return types.DateTime(d.ts.AsTime()), nil
	default:
		return types.Null(), fmt.Errorf("%w: %d", ErrUnknownKind, d.kind)
	}
}
