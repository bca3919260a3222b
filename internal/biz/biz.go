package biz

import "github.com/google/wire"

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewTopupConfig,
	NewAccountUseCase,
	NewCreditPackageUseCase,
	NewPaymentRecordUseCase,
	NewUsageUseCase,
	NewTopupUseCase, // 组合 UseCase
)
