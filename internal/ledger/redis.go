package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// transferScript checks the source balance and moves the amount in one
// atomic step, so concurrent transfers can never overdraw an account.
var transferScript = redis.NewScript(`
local bal = tonumber(redis.call('GET', KEYS[1]) or '0')
local amt = tonumber(ARGV[1])
if bal < amt then
  return 0
end
redis.call('DECRBY', KEYS[1], amt)
redis.call('INCRBY', KEYS[2], amt)
return 1
`)

// RedisLedger keeps balances in Redis under balance:<asset>:<account>.
type RedisLedger struct {
	rdb *redis.Client
}

func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

func balanceKey(asset, account string) string {
	return fmt.Sprintf("balance:%s:%s", asset, account)
}

func (l *RedisLedger) Transfer(ctx context.Context, from, to, asset string, amount uint64) error {
	keys := []string{balanceKey(asset, from), balanceKey(asset, to)}
	moved, err := transferScript.Run(ctx, l.rdb, keys, amount).Int()
	if err != nil {
		return fmt.Errorf("ledger transfer: %w", err)
	}
	if moved == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (l *RedisLedger) Balance(ctx context.Context, account, asset string) (uint64, error) {
	v, err := l.rdb.Get(ctx, balanceKey(asset, account)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Credit seeds an account balance. Operational tooling only; the escrow
// engine never mints.
func (l *RedisLedger) Credit(ctx context.Context, account, asset string, amount uint64) error {
	return l.rdb.IncrBy(ctx, balanceKey(asset, account), int64(amount)).Err()
}
