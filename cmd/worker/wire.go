//go:build wireinject
// +build wireinject

package main

import (
	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/conf"
	"voip-billing-service/internal/data"
	"voip-billing-service/internal/server"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp 初始化应用
func wireApp(*conf.Bootstrap, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		data.ProviderSet,
		biz.ProviderSet,
		server.ProviderSet,
		newApp,
	))
}
