package eventbus

import (
	"context"

	"go.uber.org/fx"
)

// Module 返回 Fx 模块
//
// 提供 *Bus，停止时关闭所有订阅。
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(NewBus),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, bus *Bus) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bus.Close()
		},
	})
}
