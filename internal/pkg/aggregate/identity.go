package aggregate

import (
	"context"
	"errors"
)

// IdentityQuery 身份解析请求，CampaignID 为 0 表示不限定活动
type IdentityQuery struct {
	UserID     uint64
	CampaignID uint64
}

// Strategy 一种账号来源，ok=false 或返回 ErrIdentityNotFound 均表示该来源无数据
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, q IdentityQuery) (HandleSet, bool, error)
}

type strategyFunc struct {
	name string
	fn   func(ctx context.Context, q IdentityQuery) (HandleSet, bool, error)
}

func (s strategyFunc) Name() string { return s.name }

func (s strategyFunc) Resolve(ctx context.Context, q IdentityQuery) (HandleSet, bool, error) {
	return s.fn(ctx, q)
}

// NewStrategy 由函数构造 Strategy
func NewStrategy(name string, fn func(ctx context.Context, q IdentityQuery) (HandleSet, bool, error)) Strategy {
	return strategyFunc{name: name, fn: fn}
}

// Resolution 解析结果，Sources 记录每个平台命中的来源
type Resolution struct {
	Handles HandleSet
	Sources map[Platform]string
}

// Found 至少解析到一个账号
func (r Resolution) Found() bool {
	return !r.Handles.Empty()
}

// ResolvedHook 解析完成后的回调，失败只影响回调自身
type ResolvedHook func(ctx context.Context, q IdentityQuery, res Resolution)

// Resolver 按优先级依次尝试各来源；每个平台取第一个有数据的来源
type Resolver struct {
	strategies []Strategy
	hooks      []ResolvedHook
}

// NewResolver 按传入顺序确定优先级
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// OnResolved 注册解析完成回调
func (r *Resolver) OnResolved(hook ResolvedHook) *Resolver {
	r.hooks = append(r.hooks, hook)
	return r
}

// Resolve 解析账号集合
//
// merge=false 时每个平台取第一个有数据的来源，所有平台命中后不再查询后续来源；
// merge=true 时合并全部来源。来源查询失败返回 AdapterError。
// 没有任何账号不是错误，返回空集合。
func (r *Resolver) Resolve(ctx context.Context, q IdentityQuery, merge bool) (Resolution, error) {
	res := Resolution{
		Handles: NewHandleSet(),
		Sources: make(map[Platform]string),
	}
	for _, s := range r.strategies {
		if !merge && len(res.Sources) == len(Platforms) {
			break
		}
		set, ok, err := s.Resolve(ctx, q)
		if errors.Is(err, ErrIdentityNotFound) {
			continue
		}
		if err != nil {
			return Resolution{}, adapterErr("identity:"+s.Name(), "", err)
		}
		if !ok {
			continue
		}
		for _, p := range Platforms {
			if len(set[p]) == 0 {
				continue
			}
			if _, taken := res.Sources[p]; taken && !merge {
				continue
			}
			for _, h := range set[p] {
				res.Handles.Add(p, string(h))
			}
			if _, taken := res.Sources[p]; !taken {
				res.Sources[p] = s.Name()
			}
		}
	}
	for _, hook := range r.hooks {
		hook(ctx, q, res)
	}
	return res, nil
}
