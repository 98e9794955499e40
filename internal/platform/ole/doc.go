// Package ole 提供基于 COM 的事件接收者套间（仅 Windows）
//
// 宿主传入的 IRTDUpdateEvent 是单线程套间对象，不能直接在派发器的工作线程上
// 调用。Apartment 在宿主线程上用 CoMarshalInterThreadInterfaceInStream 编组
// IDispatch 接口，在工作线程上以 CoInitializeEx 进入单线程套间后，通过
// CoGetInterfaceAndReleaseStream 取得代理，再经 IDispatch::GetIDsOfNames 与
// IDispatch::Invoke 调用通知方法。
//
// 非 Windows 平台上本包为空，使用 dispatch.InProcApartment。
package ole
