package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityNotFound 未解析到任何账号，调用方按零值结果处理
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrAdapterUnavailable 存储查询失败，整个请求失败
	ErrAdapterUnavailable = errors.New("adapter unavailable")
	// ErrInvalidRange 日期范围或粒度非法，在任何查询之前拒绝
	ErrInvalidRange = errors.New("invalid range")
	// ErrInconsistentSnapshotOrder 快照 captured_at 非单调，仅记录日志
	ErrInconsistentSnapshotOrder = errors.New("inconsistent snapshot order")
)

// AdapterError 描述失败的数据源，errors.Is 可同时匹配 ErrAdapterUnavailable 与底层错误
type AdapterError struct {
	Source   string
	Platform Platform
	Err      error
}

func (e *AdapterError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s query (%s): %v", ErrAdapterUnavailable, e.Source, e.Platform, e.Err)
	}
	return fmt.Sprintf("%s: %s query: %v", ErrAdapterUnavailable, e.Source, e.Err)
}

func (e *AdapterError) Unwrap() []error {
	return []error{ErrAdapterUnavailable, e.Err}
}

func adapterErr(source string, p Platform, err error) error {
	if err == nil {
		return nil
	}
	var ae *AdapterError
	if errors.As(err, &ae) {
		return err
	}
	return &AdapterError{Source: source, Platform: p, Err: err}
}

// Kind 返回错误的机器可读类别，未知错误返回空串
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRange):
		return "InvalidRange"
	case errors.Is(err, ErrAdapterUnavailable):
		return "AdapterUnavailable"
	case errors.Is(err, ErrIdentityNotFound):
		return "IdentityNotFound"
	case errors.Is(err, ErrInconsistentSnapshotOrder):
		return "InconsistentSnapshotOrder"
	}
	return ""
}
