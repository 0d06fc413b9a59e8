package broker

import (
	"context"
	"time"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/models"

	"github.com/patrickmn/go-cache"
)

const (
	accountKey   = "account"
	positionsKey = "positions"
)

// CachedBroker serves repeated reads from memory: account and positions for
// one minute, portfolio history for one interval period.
type CachedBroker struct {
	inner interfaces.IBroker
	cache *cache.Cache
	ttl   time.Duration
}

func NewCachedBroker(inner interfaces.IBroker, ttl time.Duration) *CachedBroker {
	return &CachedBroker{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// -----------------------------------------------------------------------------

func (c *CachedBroker) Account(ctx context.Context) (models.MAccountInfo, error) {
	if cached, found := c.cache.Get(accountKey); found {
		return cached.(models.MAccountInfo), nil
	}
	acct, err := c.inner.Account(ctx)
	if err != nil {
		return models.MAccountInfo{}, err
	}
	c.cache.Set(accountKey, acct, cache.DefaultExpiration)
	return acct, nil
}

// -----------------------------------------------------------------------------

func (c *CachedBroker) Positions(ctx context.Context) ([]models.MPosition, error) {
	if cached, found := c.cache.Get(positionsKey); found {
		return cached.([]models.MPosition), nil
	}
	positions, err := c.inner.Positions(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(positionsKey, positions, cache.DefaultExpiration)
	return positions, nil
}

// -----------------------------------------------------------------------------

func (c *CachedBroker) PortfolioHistory(ctx context.Context, interval models.MInterval) ([]models.MEquityPoint, error) {
	key := "history_" + string(interval)
	if cached, found := c.cache.Get(key); found {
		return cached.([]models.MEquityPoint), nil
	}
	points, err := c.inner.PortfolioHistory(ctx, interval)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, points, time.Duration(interval.Minutes())*time.Minute)
	return points, nil
}

// -----------------------------------------------------------------------------

// Invalidate drops every cached answer.
func (c *CachedBroker) Invalidate() {
	c.cache.Flush()
}
