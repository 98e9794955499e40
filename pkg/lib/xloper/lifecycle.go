package xloper

import "errors"

// ============================================================================
//                              所有权生命周期
// ============================================================================

// Clone 返回 v 的副本
//
//   - OwnedNone: 浅共享，副本仍为 OwnedNone
//   - OwnedSelf/OwnedHost: 深拷贝字符串缓冲区与 Multi 数组（递归），副本为 OwnedSelf
//
// 区域引用与 BigData 从不由分配器分配，其副本为 GC 管理的 OwnedNone。
func (v *Value) Clone(a Allocator) Value {
	if v.own == OwnedNone {
		return *v
	}

	c := *v
	c.lent = false
	switch v.kind {
	case KindStr:
		buf := a.AllocUnits(len(v.str))
		copy(buf, v.str)
		c.str = buf
		c.own = OwnedSelf
	case KindMulti:
		cells := a.AllocCells(len(v.cells))
		for i := range v.cells {
			cells[i] = v.cells[i].Clone(a)
		}
		c.cells = cells
		c.own = OwnedSelf
	case KindRef:
		c.refs = append([]Range(nil), v.refs...)
		c.own = OwnedNone
	case KindBigData:
		c.big = append([]byte(nil), v.big...)
		c.own = OwnedNone
	case KindSRef:
		c.own = OwnedNone
	default:
		c.own = OwnedSelf
	}
	return c
}

// Destroy 释放本侧负责的负载并将 v 重置为 Nil
//
// OwnedHost 与 OwnedNone 不做任何释放；再次调用为空操作。
// OwnedSelf 的区域引用或 BigData 表示内存安全缺陷，直接 panic(ErrSelfOwnedRange)。
// 返回分配器报告的错误（如重复释放），元素错误会合并返回。
func (v *Value) Destroy(a Allocator) error {
	if v.own != OwnedSelf {
		*v = Value{}
		return nil
	}

	var errs []error
	switch v.kind {
	case KindStr:
		if err := a.FreeUnits(v.str); err != nil {
			errs = append(errs, err)
		}
	case KindMulti:
		for i := range v.cells {
			if err := v.cells[i].Destroy(a); err != nil {
				errs = append(errs, err)
			}
		}
		if err := a.FreeCells(v.cells); err != nil {
			errs = append(errs, err)
		}
	case KindRef, KindSRef, KindBigData:
		panic(ErrSelfOwnedRange)
	}
	*v = Value{}
	return errors.Join(errs...)
}

// IntoExternallyOwned 将 v 移交给宿主
//
// 返回值的所有权为 OwnedHost（原为 OwnedNone 时保持不变），v 被重置为 Nil，
// 之后本侧不会再释放该负载，直到宿主通过 AutoFree 交还。
// 只有经此移交的值会被标记为借出。
func (v *Value) IntoExternallyOwned() Value {
	out := *v
	if out.own == OwnedSelf {
		out.own = OwnedHost
		out.lent = true
	}
	*v = Value{}
	return out
}

// TakeLocalOwnership 接管宿主交还的值
//
// 只有借出的值（本侧分配）变回 OwnedSelf；宿主分配的 OwnedHost 值保持
// OwnedHost，随后的 Destroy 不会释放它。v 被重置为 Nil。
func (v *Value) TakeLocalOwnership() Value {
	out := *v
	if out.own == OwnedHost && out.lent {
		out.own = OwnedSelf
	}
	out.lent = false
	*v = Value{}
	return out
}

// WithHostOwnership 将宿主内存中的值标记为宿主所有（宿主结果参数使用）
func (v *Value) WithHostOwnership() {
	if v.kind == KindStr || v.kind == KindMulti || v.kind == KindRef || v.kind == KindBigData {
		v.own = OwnedHost
		v.lent = false
	}
}
