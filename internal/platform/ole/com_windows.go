//go:build windows

package ole

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modole32    = windows.NewLazySystemDLL("ole32.dll")
	modoleaut32 = windows.NewLazySystemDLL("oleaut32.dll")

	procCoInitializeEx                        = modole32.NewProc("CoInitializeEx")
	procCoUninitialize                        = modole32.NewProc("CoUninitialize")
	procCoMarshalInterThreadInterfaceInStream = modole32.NewProc("CoMarshalInterThreadInterfaceInStream")
	procCoGetInterfaceAndReleaseStream        = modole32.NewProc("CoGetInterfaceAndReleaseStream")
	procVariantClear                          = modoleaut32.NewProc("VariantClear")
)

// IIDIDispatch {00020400-0000-0000-C000-000000000046}
var IIDIDispatch = windows.GUID{
	Data1: 0x00020400,
	Data2: 0x0000,
	Data3: 0x0000,
	Data4: [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46},
}

var iidNull windows.GUID

const (
	coinitApartmentThreaded = 0x2
	dispatchMethod          = 0x1
	localeUserDefault       = 0x400

	sOK    = 0
	sFalse = 1
)

// HRESULTError COM 调用失败
type HRESULTError struct {
	Op string
	HR uint32
}

// Error 实现 error 接口
func (e *HRESULTError) Error() string {
	return fmt.Sprintf("%s: HRESULT 0x%08X", e.Op, e.HR)
}

func hresult(op string, r uintptr) error {
	if int32(r) < 0 {
		return &HRESULTError{Op: op, HR: uint32(r)}
	}
	return nil
}

// ============================================================================
//                              COM 接口布局
// ============================================================================

type unknownVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

type dispatchVtbl struct {
	unknownVtbl
	GetTypeInfoCount uintptr
	GetTypeInfo      uintptr
	GetIDsOfNames    uintptr
	Invoke           uintptr
}

// IUnknown COM IUnknown 接口指针
type IUnknown struct {
	vtbl *unknownVtbl
}

// AddRef 增加引用计数
func (u *IUnknown) AddRef() uint32 {
	r, _, _ := syscall.SyscallN(u.vtbl.AddRef, uintptr(unsafe.Pointer(u)))
	return uint32(r)
}

// Release 释放引用
func (u *IUnknown) Release() uint32 {
	r, _, _ := syscall.SyscallN(u.vtbl.Release, uintptr(unsafe.Pointer(u)))
	return uint32(r)
}

// IDispatch COM IDispatch 接口指针
type IDispatch struct {
	vtbl *dispatchVtbl
}

func (d *IDispatch) unknown() *IUnknown {
	return (*IUnknown)(unsafe.Pointer(d))
}

type dispParams struct {
	rgvarg            uintptr
	rgdispidNamedArgs uintptr
	cArgs             uint32
	cNamedArgs        uint32
}

// variant VARIANT 布局，仅用于接收并清理返回值
type variant struct {
	vt       uint16
	reserved [3]uint16
	val      uintptr
	_        uintptr
}

func (d *IDispatch) getIDOfName(name string) (int32, error) {
	wname, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	var dispid int32
	r, _, _ := syscall.SyscallN(d.vtbl.GetIDsOfNames,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&iidNull)),
		uintptr(unsafe.Pointer(&wname)),
		1,
		localeUserDefault,
		uintptr(unsafe.Pointer(&dispid)))
	if err := hresult("IDispatch::GetIDsOfNames", r); err != nil {
		return 0, err
	}
	return dispid, nil
}

func (d *IDispatch) invokeMethod(dispid int32) error {
	var params dispParams
	var result variant
	var argErr uint32
	r, _, _ := syscall.SyscallN(d.vtbl.Invoke,
		uintptr(unsafe.Pointer(d)),
		uintptr(dispid),
		uintptr(unsafe.Pointer(&iidNull)),
		localeUserDefault,
		dispatchMethod,
		uintptr(unsafe.Pointer(&params)),
		uintptr(unsafe.Pointer(&result)),
		0,
		uintptr(unsafe.Pointer(&argErr)))
	procVariantClear.Call(uintptr(unsafe.Pointer(&result)))
	return hresult("IDispatch::Invoke", r)
}

// ============================================================================
//                              COM 函数
// ============================================================================

func coInitialize() error {
	r, _, _ := procCoInitializeEx.Call(0, coinitApartmentThreaded)
	if r == sOK || r == sFalse {
		return nil
	}
	return hresult("CoInitializeEx", r)
}

func coUninitialize() {
	procCoUninitialize.Call()
}

func marshalDispatch(d *IDispatch) (*IUnknown, error) {
	var stream *IUnknown
	r, _, _ := procCoMarshalInterThreadInterfaceInStream.Call(
		uintptr(unsafe.Pointer(&IIDIDispatch)),
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&stream)))
	if err := hresult("CoMarshalInterThreadInterfaceInStream", r); err != nil {
		return nil, err
	}
	return stream, nil
}

// unmarshalDispatch 取得代理并释放流，无论成败流都不能再使用
func unmarshalDispatch(stream *IUnknown) (*IDispatch, error) {
	var d *IDispatch
	r, _, _ := procCoGetInterfaceAndReleaseStream.Call(
		uintptr(unsafe.Pointer(stream)),
		uintptr(unsafe.Pointer(&IIDIDispatch)),
		uintptr(unsafe.Pointer(&d)))
	if err := hresult("CoGetInterfaceAndReleaseStream", r); err != nil {
		return nil, err
	}
	return d, nil
}
