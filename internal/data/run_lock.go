package data

import (
	"context"
	"errors"
	"time"

	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/conf"
	"voip-billing-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// runLocker 基于 Redis 的批处理运行互斥锁（实现 biz.RunLocker）
// 调度器在上一次运行未结束时再次触发会导致同一账户被重复收费，
// 锁的过期时间兜底进程异常退出后锁无法释放的情况
type runLocker struct {
	sync *redsync.Redsync
	ttl  time.Duration
	log  *log.Helper
}

// NewRunLocker 创建批处理运行锁（返回 biz.RunLocker 接口）
func NewRunLocker(sync *redsync.Redsync, c *conf.Bootstrap, logger log.Logger) biz.RunLocker {
	ttl := 10 * time.Minute
	if c.Topup != nil {
		ttl = conf.ParseDuration(c.Topup.RunLockTtl, ttl)
	}
	return &runLocker{
		sync: sync,
		ttl:  ttl,
		log:  log.NewHelper(logger),
	}
}

// TryLockRun 尝试获取运行锁，锁被占用时返回 ok=false 而非错误
func (l *runLocker) TryLockRun(ctx context.Context) (func(), bool, error) {
	mutex := l.sync.NewMutex(constants.RedisKeyTopupRunLock,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			// 锁被其他运行持有，不是锁服务故障
			return nil, false, nil
		}
		return nil, false, err
	}

	release := func() {
		if ok, err := mutex.Unlock(); !ok || err != nil {
			l.log.Warnf("Failed to release top-up run lock: %v", err)
		}
	}
	return release, true, nil
}
