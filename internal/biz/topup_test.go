package biz

import (
	"context"
	"errors"
	"io"
	"testing"

	"voip-billing-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== 测试用 fake ==========

type fakeAccountRepo struct {
	candidates []*Account
	listErr    error
	listCalled bool
	creditErr  map[string]error
	credited   map[string]int64
}

func newFakeAccountRepo(candidates ...*Account) *fakeAccountRepo {
	return &fakeAccountRepo{
		candidates: candidates,
		creditErr:  make(map[string]error),
		credited:   make(map[string]int64),
	}
}

func (f *fakeAccountRepo) ListTopupCandidates(ctx context.Context, minBalance int64) ([]*Account, error) {
	f.listCalled = true
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.candidates, nil
}

func (f *fakeAccountRepo) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	for _, a := range f.candidates {
		if a.AccountID == accountID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) CreditBalance(ctx context.Context, accountID string, credits int64) error {
	if err := f.creditErr[accountID]; err != nil {
		return err
	}
	f.credited[accountID] += credits
	return nil
}

type fakePackageRepo struct {
	packages map[string]*CreditPackage
	err      error
}

func (f *fakePackageRepo) GetPackageByID(ctx context.Context, packageID string) (*CreditPackage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.packages[packageID], nil
}

type fakePaymentRecordRepo struct {
	records   []*PaymentRecord
	createErr map[string]error
}

func newFakePaymentRecordRepo() *fakePaymentRecordRepo {
	return &fakePaymentRecordRepo{createErr: make(map[string]error)}
}

func (f *fakePaymentRecordRepo) CreatePaymentRecord(ctx context.Context, record *PaymentRecord) error {
	if err := f.createErr[record.AccountID]; err != nil {
		return err
	}
	record.PaymentRecordID = "pr_" + record.AccountID
	stored := *record
	f.records = append(f.records, &stored)
	return nil
}

func (f *fakePaymentRecordRepo) ListPaymentRecords(ctx context.Context, accountID string, page, pageSize int) ([]*PaymentRecord, int64, error) {
	var out []*PaymentRecord
	for _, r := range f.records {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

type fakeGateway struct {
	methods      map[string]string // customerRef -> 默认支付方式
	methodErr    error
	chargeStatus map[string]string // customerRef -> 收费终态
	chargeErr    map[string]error
	charges      []*ChargeRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		methods:      make(map[string]string),
		chargeStatus: make(map[string]string),
		chargeErr:    make(map[string]error),
	}
}

func (f *fakeGateway) GetDefaultPaymentMethod(ctx context.Context, customerRef string) (string, error) {
	if f.methodErr != nil {
		return "", f.methodErr
	}
	return f.methods[customerRef], nil
}

func (f *fakeGateway) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeReply, error) {
	f.charges = append(f.charges, req)
	if err := f.chargeErr[req.CustomerRef]; err != nil {
		return nil, err
	}
	status := f.chargeStatus[req.CustomerRef]
	if status == "" {
		status = constants.ChargeStatusSucceeded
	}
	return &ChargeReply{TransactionID: "pi_" + req.CustomerRef, Status: status}, nil
}

type fakeNotifier struct {
	sent []*TopupNotification
	err  error
}

func (f *fakeNotifier) NotifyTopup(ctx context.Context, n *TopupNotification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeLocker struct {
	held     bool
	err      error
	released bool
}

func (f *fakeLocker) TryLockRun(ctx context.Context) (func(), bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held {
		return nil, false, nil
	}
	return func() { f.released = true }, true, nil
}

type fakeBillingRepo struct {
	batches   [][]*UsageEvent
	deductErr error
}

func (f *fakeBillingRepo) ListTopupCandidates(ctx context.Context, minBalance int64) ([]*Account, error) {
	return nil, nil
}
func (f *fakeBillingRepo) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	return nil, nil
}
func (f *fakeBillingRepo) CreditBalance(ctx context.Context, accountID string, credits int64) error {
	return nil
}
func (f *fakeBillingRepo) GetPackageByID(ctx context.Context, packageID string) (*CreditPackage, error) {
	return nil, nil
}
func (f *fakeBillingRepo) CreatePaymentRecord(ctx context.Context, record *PaymentRecord) error {
	return nil
}
func (f *fakeBillingRepo) ListPaymentRecords(ctx context.Context, accountID string, page, pageSize int) ([]*PaymentRecord, int64, error) {
	return nil, 0, nil
}
func (f *fakeBillingRepo) BatchDeductUsage(ctx context.Context, events []*UsageEvent) error {
	if f.deductErr != nil {
		return f.deductErr
	}
	f.batches = append(f.batches, events)
	return nil
}

// ========== 测试装配 ==========

type topupFixture struct {
	accounts *fakeAccountRepo
	packages *fakePackageRepo
	payments *fakePaymentRecordRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
	locker   *fakeLocker
	uc       *TopupUseCase
}

func newTopupFixture(t *testing.T, candidates ...*Account) *topupFixture {
	t.Helper()

	logger := log.NewStdLogger(io.Discard)
	f := &topupFixture{
		accounts: newFakeAccountRepo(candidates...),
		packages: &fakePackageRepo{packages: make(map[string]*CreditPackage)},
		payments: newFakePaymentRecordRepo(),
		gateway:  newFakeGateway(),
		notifier: &fakeNotifier{},
		locker:   &fakeLocker{},
	}
	f.uc = NewTopupUseCase(
		NewAccountUseCase(f.accounts, logger),
		NewCreditPackageUseCase(f.packages, logger),
		NewPaymentRecordUseCase(f.payments, logger),
		&fakeBillingRepo{},
		f.gateway,
		f.notifier,
		f.locker,
		&TopupConfig{MinBalance: 100, Currency: "usd", RunTimeout: 0},
		logger,
	)
	return f
}

func testAccount(id string) *Account {
	return &Account{
		AccountID:          id,
		Name:               "Account " + id,
		Email:              id + "@example.com",
		Balance:            50,
		AutoTopup:          true,
		PaymentCustomerRef: "cus_" + id,
		TopupPackageID:     "pkg_500",
	}
}

func standardPackage() *CreditPackage {
	return &CreditPackage{PackageID: "pkg_500", Name: "Standard 500", Price: 5.00, Credits: 500}
}

// ========== 测试 ==========

func TestTopupUseCase_RunAutoTopup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success path", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.packages.packages["pkg_500"] = standardPackage()
		f.gateway.methods["cus_acc1"] = "pm_card_visa"

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Scanned)
		assert.Equal(t, 1, report.Processed)
		assert.Equal(t, 1, report.Succeeded)
		assert.False(t, report.Skipped)

		// 收费请求使用最小货币单位与对账元数据
		require.Len(t, f.gateway.charges, 1)
		charge := f.gateway.charges[0]
		assert.Equal(t, int64(500), charge.Amount)
		assert.Equal(t, "usd", charge.Currency)
		assert.Equal(t, "pm_card_visa", charge.PaymentMethodRef)
		assert.Equal(t, "acc1", charge.Metadata[constants.MetadataKeyAccountID])
		assert.Equal(t, "pkg_500", charge.Metadata[constants.MetadataKeyPackageID])
		assert.Equal(t, "500", charge.Metadata[constants.MetadataKeyCredits])
		assert.Equal(t, "true", charge.Metadata[constants.MetadataKeyAutoTopup])

		// 支付记录先落库，再入账
		require.Len(t, f.payments.records, 1)
		record := f.payments.records[0]
		assert.Equal(t, "acc1", record.AccountID)
		assert.Equal(t, 5.00, record.Amount)
		assert.Equal(t, int64(500), record.Credits)
		assert.Equal(t, "pi_cus_acc1", record.TransactionID)
		assert.Equal(t, constants.PaymentStatusSucceeded, record.Status)
		assert.True(t, record.AutoTopup)

		assert.Equal(t, int64(500), f.accounts.credited["acc1"])

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, "acc1", f.notifier.sent[0].AccountID)
		assert.Equal(t, int64(500), f.notifier.sent[0].Credits)

		assert.True(t, f.locker.released)
	})

	t.Run("Package missing skips account without gateway call", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		// 套餐不存在

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Succeeded)
		assert.Empty(t, f.gateway.charges)
		assert.Empty(t, f.payments.records)
		assert.Empty(t, f.accounts.credited)
	})

	t.Run("No default payment method skips account", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.packages.packages["pkg_500"] = standardPackage()
		// 网关侧未绑定默认支付方式

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Succeeded)
		assert.Empty(t, f.gateway.charges)
		assert.Empty(t, f.payments.records)
		assert.Empty(t, f.accounts.credited)
	})

	t.Run("Charge requires_action means no record and no credit", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.packages.packages["pkg_500"] = standardPackage()
		f.gateway.methods["cus_acc1"] = "pm_card_visa"
		f.gateway.chargeStatus["cus_acc1"] = constants.ChargeStatusRequiresAction

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Succeeded)
		assert.Empty(t, f.payments.records)
		assert.Empty(t, f.accounts.credited)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("Gateway error means no record and no credit", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.packages.packages["pkg_500"] = standardPackage()
		f.gateway.methods["cus_acc1"] = "pm_card_visa"
		f.gateway.chargeErr["cus_acc1"] = errors.New("gateway timeout")

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		assert.Equal(t, 0, report.Succeeded)
		assert.Empty(t, f.payments.records)
		assert.Empty(t, f.accounts.credited)
	})

	t.Run("Record failure means no credit and does not stop other accounts", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"), testAccount("acc2"), testAccount("acc3"))
		f.packages.packages["pkg_500"] = standardPackage()
		for _, id := range []string{"acc1", "acc2", "acc3"} {
			f.gateway.methods["cus_"+id] = "pm_card_visa"
		}
		f.payments.createErr["acc2"] = errors.New("db down")

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Scanned)
		assert.Equal(t, 3, report.Processed)
		assert.Equal(t, 2, report.Succeeded)

		// acc2 已收费但未落库，绝不入账
		assert.Len(t, f.gateway.charges, 3)
		assert.Len(t, f.payments.records, 2)
		assert.Equal(t, int64(500), f.accounts.credited["acc1"])
		assert.Zero(t, f.accounts.credited["acc2"])
		assert.Equal(t, int64(500), f.accounts.credited["acc3"])
	})

	t.Run("Credit failure leaves payment record behind", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.packages.packages["pkg_500"] = standardPackage()
		f.gateway.methods["cus_acc1"] = "pm_card_visa"
		f.accounts.creditErr["acc1"] = errors.New("db down")

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Succeeded)

		// 对账缺口：支付记录存在，积分未入账
		require.Len(t, f.payments.records, 1)
		assert.Zero(t, f.accounts.credited["acc1"])
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("Notification failure does not change the outcome", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.packages.packages["pkg_500"] = standardPackage()
		f.gateway.methods["cus_acc1"] = "pm_card_visa"
		f.notifier.err = errors.New("mq unavailable")

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
		assert.Equal(t, int64(500), f.accounts.credited["acc1"])
	})

	t.Run("Run skipped when lock is held", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.locker.held = true

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Zero(t, report.Processed)
		assert.False(t, f.accounts.listCalled)
	})

	t.Run("Lock service error aborts the run", func(t *testing.T) {
		f := newTopupFixture(t, testAccount("acc1"))
		f.locker.err = errors.New("redis down")

		report, err := f.uc.RunAutoTopup(ctx)
		assert.Error(t, err)
		assert.Nil(t, report)
		assert.False(t, f.accounts.listCalled)
	})

	t.Run("Candidate query error aborts the run", func(t *testing.T) {
		f := newTopupFixture(t)
		f.accounts.listErr = errors.New("db down")

		report, err := f.uc.RunAutoTopup(ctx)
		assert.Error(t, err)
		assert.Nil(t, report)
		assert.True(t, f.locker.released)
	})

	t.Run("Empty candidate list completes with empty report", func(t *testing.T) {
		f := newTopupFixture(t)

		report, err := f.uc.RunAutoTopup(ctx)
		require.NoError(t, err)
		assert.Zero(t, report.Scanned)
		assert.Zero(t, report.Succeeded)
		assert.False(t, report.Skipped)
		assert.True(t, f.locker.released)
	})
}
