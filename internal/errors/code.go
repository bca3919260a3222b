package errors

import (
	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	i18nPkg "github.com/gaoyong06/go-pkg/middleware/i18n"
)

func init() {
	// 初始化全局错误管理器（使用项目特定的配置）
	pkgErrors.InitGlobalErrorManager("i18n", i18nPkg.Language)
}

// VoIP Billing Service 错误码定义
// 错误码格式：SSMMEE (6位数字)
//   SS: 服务标识，VoIP Billing 固定为 21
//   MM: 模块标识，按业务划分
//   EE: 模块内错误序号
//
// 模块划分：
//   00: 通用模块（复用 go-pkg 通用错误码）
//   01: 账户模块
//   02: 套餐模块
//   03: 自动充值模块
//   04: 话单扣费模块
//   05: 支付网关模块
//   06-99: 预留扩展

// 账户模块错误码 (210100-210199)
const (
	// ErrCodeAccountNotFound 账户不存在
	ErrCodeAccountNotFound = 210101
	// ErrCodeAccountQueryFailed 账户查询失败
	ErrCodeAccountQueryFailed = 210102
	// ErrCodeBalanceCreditFailed 积分入账失败
	ErrCodeBalanceCreditFailed = 210103
	// ErrCodeCandidateQueryFailed 候选账户查询失败
	ErrCodeCandidateQueryFailed = 210104
)

// 套餐模块错误码 (210200-210299)
const (
	// ErrCodePackageNotFound 套餐不存在
	ErrCodePackageNotFound = 210201
	// ErrCodePackageQueryFailed 套餐查询失败
	ErrCodePackageQueryFailed = 210202
)

// 自动充值模块错误码 (210300-210399)
const (
	// ErrCodeTopupRunActive 上一次批处理仍在运行
	ErrCodeTopupRunActive = 210301
	// ErrCodeTopupRunLockFailed 获取批处理运行锁失败
	ErrCodeTopupRunLockFailed = 210302
	// ErrCodePaymentRecordCreateFailed 支付记录写入失败
	ErrCodePaymentRecordCreateFailed = 210303
	// ErrCodePaymentRecordQueryFailed 支付记录查询失败
	ErrCodePaymentRecordQueryFailed = 210304
)

// 话单扣费模块错误码 (210400-210499)
const (
	// ErrCodeUsageDeductFailed 话单扣费失败
	ErrCodeUsageDeductFailed = 210401
	// ErrCodeUsageLockFailed 获取话单扣费锁失败
	ErrCodeUsageLockFailed = 210402
)

// 支付网关模块错误码 (210500-210599)
const (
	// ErrCodeGatewayConfigNil 支付网关配置为空
	ErrCodeGatewayConfigNil = 210501
	// ErrCodeGatewayCustomerQueryFailed 查询网关客户信息失败
	ErrCodeGatewayCustomerQueryFailed = 210502
	// ErrCodeGatewayChargeFailed 网关收费失败
	ErrCodeGatewayChargeFailed = 210503
)
