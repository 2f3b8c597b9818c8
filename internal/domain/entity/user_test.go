package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionValid(t *testing.T) {
	for _, tier := range []Subscription{SubscriptionStarter, SubscriptionPro, SubscriptionBusiness} {
		assert.True(t, tier.Valid(), string(tier))
	}
	for _, tier := range []Subscription{"", "platinum", "Starter", "PRO"} {
		assert.False(t, tier.Valid(), string(tier))
	}
}
