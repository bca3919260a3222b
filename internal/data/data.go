package data

import (
	"fmt"

	"voip-billing-service/internal/conf"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewDB,
	NewRedis,
	NewRedsync,
	NewData,
	NewAccountRepo,
	NewCreditPackageRepo,
	NewPaymentRecordRepo,
	NewBillingRepo,
	NewRunLocker,
	NewPaymentGateway,
	NewNotifier,
)

// Data 数据层结构体
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	mq  rocketmq.Producer // 通知消息生产者，未启用时为 nil
}

// NewDB 创建数据库连接
func NewDB(c *conf.Bootstrap) (*gorm.DB, error) {
	if c.Data == nil || c.Data.Database == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	db, err := gorm.Open(mysql.Open(c.Data.Database.Source), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewRedis 创建 Redis 连接
func NewRedis(c *conf.Bootstrap) (*redis.Client, error) {
	if c.Data == nil || c.Data.Redis == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Data.Redis.Addr,
		Password:     c.Data.Redis.Password,
		DB:           c.Data.Redis.Db,
		ReadTimeout:  conf.ParseDuration(c.Data.Redis.ReadTimeout, 0),
		WriteTimeout: conf.ParseDuration(c.Data.Redis.WriteTimeout, 0),
	})

	// 测试连接
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewRedsync 创建分布式锁客户端
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(rdb))
}

// NewData 创建数据层实例
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	logHelper := log.NewHelper(logger)

	// 通知生产者（可选，未启用时通知降级为仅记日志）
	var mq rocketmq.Producer
	if c.Data != nil && c.Data.Rocketmq != nil && c.Data.Rocketmq.Enabled {
		p, err := rocketmq.NewProducer(
			producer.WithNsResolver(primitive.NewPassthroughResolver(c.Data.Rocketmq.NameServers)),
			producer.WithGroupName(c.Data.Rocketmq.GroupName),
			producer.WithRetry(c.Data.Rocketmq.RetryTimes),
		)
		if err != nil {
			logHelper.Errorf("init producer error: %v", err)
		} else if err := p.Start(); err != nil {
			logHelper.Errorf("start producer error: %v", err)
		} else {
			mq = p
		}
	}

	cleanup := func() {
		logHelper.Info("closing the data resources")
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		if err := rdb.Close(); err != nil {
			logHelper.Errorf("failed to close redis: %v", err)
		}
		if mq != nil {
			if err := mq.Shutdown(); err != nil {
				logHelper.Errorf("failed to shutdown producer: %v", err)
			}
		}
	}

	return &Data{
		db:  db,
		rdb: rdb,
		mq:  mq,
	}, cleanup, nil
}
