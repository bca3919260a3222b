package data

import (
	"context"
	"errors"
	"time"

	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/conf"
	billingErrors "voip-billing-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// PaymentGateway 支付网关接口（实现 biz.PaymentGateway）
// 直接使用 biz.PaymentGateway 接口，避免重复定义
type PaymentGateway = biz.PaymentGateway

// stripeGateway Stripe 网关客户端实现
type stripeGateway struct {
	sc      *client.API
	timeout time.Duration
	log     *log.Helper
}

// NewPaymentGateway 创建 Stripe 网关客户端
func NewPaymentGateway(c *conf.Bootstrap, logger log.Logger) (PaymentGateway, error) {
	if c.Stripe == nil || c.Stripe.ApiKey == "" {
		return nil, pkgErrors.NewBizErrorWithLang(context.Background(), billingErrors.ErrCodeGatewayConfigNil)
	}

	sc := &client.API{}
	sc.Init(c.Stripe.ApiKey, nil)

	return &stripeGateway{
		sc:      sc,
		timeout: conf.ParseDuration(c.Stripe.Timeout, 30*time.Second),
		log:     log.NewHelper(logger),
	}, nil
}

// GetDefaultPaymentMethod 查询网关客户的默认支付方式（实现 biz.PaymentGateway 接口）
// 客户未绑定默认支付方式时返回空字符串而非错误
func (g *stripeGateway) GetDefaultPaymentMethod(ctx context.Context, customerRef string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.CustomerParams{}
	params.Context = callCtx
	params.AddExpand("invoice_settings.default_payment_method")

	customer, err := g.sc.Customers.Get(customerRef, params)
	if err != nil {
		g.log.Errorf("GetDefaultPaymentMethod failed: customer=%s, error=%v", customerRef, err)
		return "", pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeGatewayCustomerQueryFailed)
	}

	if customer.InvoiceSettings == nil || customer.InvoiceSettings.DefaultPaymentMethod == nil {
		return "", nil
	}
	return customer.InvoiceSettings.DefaultPaymentMethod.ID, nil
}

// CreateCharge 发起离线收费（实现 biz.PaymentGateway 接口）
// off_session + confirm：商户发起、无持卡人交互、立即确认；
// 幂等 key 保证同一次收费请求重放不会重复扣款；
// 超时由 callCtx 控制，到期按收费失败处理
func (g *stripeGateway) CreateCharge(ctx context.Context, req *biz.ChargeRequest) (*biz.ChargeReply, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(req.Currency),
		Customer:      stripe.String(req.CustomerRef),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		Description:   stripe.String(req.Description),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.Context = callCtx
	params.IdempotencyKey = stripe.String(req.ChargeID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		// 卡被拒等业务性失败以 error 返回，但 PaymentIntent 已带终态，
		// 转换为带状态的响应交由业务层按非 succeeded 处理
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.PaymentIntent != nil {
			g.log.Warnf("CreateCharge declined: charge_id=%s, code=%s, transaction_id=%s, status=%s",
				req.ChargeID, stripeErr.Code, stripeErr.PaymentIntent.ID, stripeErr.PaymentIntent.Status)
			return &biz.ChargeReply{
				TransactionID: stripeErr.PaymentIntent.ID,
				Status:        string(stripeErr.PaymentIntent.Status),
			}, nil
		}
		g.log.Errorf("CreateCharge failed: charge_id=%s, error=%v", req.ChargeID, err)
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeGatewayChargeFailed)
	}

	g.log.Infof("CreateCharge submitted: charge_id=%s, transaction_id=%s, status=%s",
		req.ChargeID, intent.ID, intent.Status)

	return &biz.ChargeReply{
		TransactionID: intent.ID,
		Status:        string(intent.Status),
	}, nil
}
