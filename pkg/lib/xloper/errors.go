package xloper

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch 类型无法转换
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidUTF16 字符串缓冲区不是合法的 UTF-16
	ErrInvalidUTF16 = errors.New("invalid utf-16")

	// ErrSelfOwnedRange 本侧声称拥有区域引用负载
	//
	// 本系统从不分配区域引用缓冲区，出现即为内存安全缺陷。
	ErrSelfOwnedRange = errors.New("self-owned range payload is not implemented")

	// ErrDoubleFree 同一缓冲区被释放两次
	ErrDoubleFree = errors.New("double free")

	// ErrForeignFree 释放了不是由该分配器分配的缓冲区
	ErrForeignFree = errors.New("free of foreign buffer")

	// ErrUnknownCoercion 无法识别的强制转换选择器
	ErrUnknownCoercion = errors.New("unknown coercion selector")
)

// ConversionError 宿主值到标量的转换失败
type ConversionError struct {
	// From 源类型
	From Kind
	// To 目标类型名
	To string
	// Err 底层原因（ErrTypeMismatch 或 ErrInvalidUTF16）
	Err error
}

// Error 实现 error 接口
func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s to %s: %v", e.From, e.To, e.Err)
}

// Unwrap 返回底层错误
func (e *ConversionError) Unwrap() error {
	return e.Err
}

func mismatch(from Kind, to string) error {
	return &ConversionError{From: from, To: to, Err: ErrTypeMismatch}
}
