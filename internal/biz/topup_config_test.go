package biz

import (
	"testing"
	"time"

	"voip-billing-service/internal/conf"
	"voip-billing-service/internal/constants"

	"github.com/stretchr/testify/assert"
)

func TestNewTopupConfig(t *testing.T) {
	t.Run("Nil bootstrap falls back to defaults", func(t *testing.T) {
		c := NewTopupConfig(nil)
		assert.Equal(t, int64(constants.DefaultMinBalance), c.MinBalance)
		assert.Equal(t, constants.DefaultCurrency, c.Currency)
		assert.Equal(t, constants.DefaultTopupSchedule, c.Schedule)
		assert.Equal(t, 10*time.Minute, c.RunTimeout)
	})

	t.Run("Configured values override defaults", func(t *testing.T) {
		c := NewTopupConfig(&conf.Bootstrap{
			Topup: &conf.Topup{
				MinBalance: 250,
				Schedule:   "0 0 * * * *",
				RunTimeout: "5m",
			},
			Stripe: &conf.Stripe{Currency: "eur"},
		})
		assert.Equal(t, int64(250), c.MinBalance)
		assert.Equal(t, "eur", c.Currency)
		assert.Equal(t, "0 0 * * * *", c.Schedule)
		assert.Equal(t, 5*time.Minute, c.RunTimeout)
	})

	t.Run("Zero threshold falls back to default", func(t *testing.T) {
		c := NewTopupConfig(&conf.Bootstrap{Topup: &conf.Topup{MinBalance: 0}})
		assert.Equal(t, int64(constants.DefaultMinBalance), c.MinBalance)
	})

	t.Run("Invalid run timeout falls back to default", func(t *testing.T) {
		c := NewTopupConfig(&conf.Bootstrap{Topup: &conf.Topup{RunTimeout: "not-a-duration"}})
		assert.Equal(t, 10*time.Minute, c.RunTimeout)
	})
}
