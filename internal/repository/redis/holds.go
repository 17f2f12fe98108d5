package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisx "github.com/bookmyseat/bms-go/internal/redis"
	"github.com/bookmyseat/bms-go/internal/repository"
	"github.com/redis/go-redis/v9"
)

// Lua script for acquire-and-replace of a user's seat hold on one bus.
// A seat key holds the owning user id and expires with the hold TTL; the
// per-user index key remembers the seats so the next acquire can release
// them (cancel-and-replace, last write wins).
//
// KEYS[1] = user index key
// ARGV[1] = seat key prefix
// ARGV[2] = seat key suffix
// ARGV[3] = user id
// ARGV[4] = ttl_ms
// ARGV[5..] = seat ids
const luaAcquireHold = `
local idx = KEYS[1]
local prefix = ARGV[1]
local suffix = ARGV[2]
local user = ARGV[3]
local ttl = tonumber(ARGV[4])

-- reject if any seat is held by someone else
for i = 5, #ARGV do
  local owner = redis.call('GET', prefix .. ARGV[i] .. suffix)
  if owner and owner ~= user then
    return {0, ARGV[i]}
  end
end

-- drop the user's previous hold on this bus
local prev = redis.call('GET', idx)
if prev then
  for seat in string.gmatch(prev, '[^,]+') do
    redis.call('DEL', prefix .. seat .. suffix)
  end
end

if #ARGV < 5 then
  redis.call('DEL', idx)
  return {1, ''}
end

for i = 5, #ARGV do
  redis.call('SET', prefix .. ARGV[i] .. suffix, user, 'PX', ttl)
end
redis.call('SET', idx, table.concat({unpack(ARGV, 5)}, ','), 'PX', ttl)

return {1, ''}
`

const luaReleaseHold = `
local idx = KEYS[1]
local prefix = ARGV[1]
local suffix = ARGV[2]

local prev = redis.call('GET', idx)
if prev then
  for seat in string.gmatch(prev, '[^,]+') do
    redis.call('DEL', prefix .. seat .. suffix)
  end
  redis.call('DEL', idx)
end
return 1
`

// HeldSeatError reports the first seat that blocked a hold.
type HeldSeatError struct {
	SeatID string
}

func (e HeldSeatError) Error() string {
	return fmt.Sprintf("seat %s is held by another user", e.SeatID)
}

func (e HeldSeatError) Unwrap() error { return repository.ErrSeatsHeld }

// HoldStore is the authoritative seat-hold backend. TTL enforcement is
// Redis's job; an expired hold simply vanishes.
type HoldStore struct {
	rdb     *redis.Client
	acquire *redis.Script
	release *redis.Script
}

func NewHoldStore(rdb *redis.Client) *HoldStore {
	return &HoldStore{
		rdb:     rdb,
		acquire: redis.NewScript(luaAcquireHold),
		release: redis.NewScript(luaReleaseHold),
	}
}

func seatKeyParts(busID string) (prefix, suffix string) {
	// Matches redisx.KeySeatHold(busID, seatID) split around the seat id.
	full := redisx.KeySeatHold(busID, "\x00")
	i := strings.IndexByte(full, '\x00')
	return full[:i], full[i+1:]
}

// Acquire replaces the user's hold on busID with seats for ttl. Returns
// HeldSeatError (wrapping repository.ErrSeatsHeld) when another user holds
// any of the requested seats.
func (s *HoldStore) Acquire(
	ctx context.Context,
	busID string,
	userID int64,
	seats []string,
	ttl time.Duration,
) error {
	const op = "redis.HoldStore.Acquire"

	prefix, suffix := seatKeyParts(busID)

	args := make([]any, 0, 4+len(seats))
	args = append(args, prefix, suffix, fmt.Sprint(userID), ttl.Milliseconds())
	for _, seat := range seats {
		args = append(args, seat)
	}

	res, err := s.acquire.Run(
		ctx,
		s.rdb,
		[]string{redisx.KeyUserHold(busID, userID)},
		args...,
	).Result()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("%s: bad script result: %v", op, res)
	}

	if toInt(arr[0]) != 1 {
		seatID, _ := arr[1].(string)
		return fmt.Errorf("%s:%w", op, HeldSeatError{SeatID: seatID})
	}

	return nil
}

// Release drops the user's hold on busID, if any.
func (s *HoldStore) Release(ctx context.Context, busID string, userID int64) error {
	const op = "redis.HoldStore.Release"

	prefix, suffix := seatKeyParts(busID)

	err := s.release.Run(
		ctx,
		s.rdb,
		[]string{redisx.KeyUserHold(busID, userID)},
		prefix, suffix,
	).Err()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Get returns the user's current hold and its remaining TTL.
func (s *HoldStore) Get(ctx context.Context, busID string, userID int64) ([]string, time.Duration, error) {
	const op = "redis.HoldStore.Get"

	key := redisx.KeyUserHold(busID, userID)

	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	ttl, err := s.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	return strings.Split(val, ","), ttl, nil
}

// HeldByOthers returns the subset of seats currently held by a user other
// than userID. Used by the booking path as a pre-commit guard.
func (s *HoldStore) HeldByOthers(
	ctx context.Context,
	busID string,
	userID int64,
	seats []string,
) ([]string, error) {
	const op = "redis.HoldStore.HeldByOthers"

	if len(seats) == 0 {
		return nil, nil
	}

	keys := make([]string, len(seats))
	for i, seat := range seats {
		keys[i] = redisx.KeySeatHold(busID, seat)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	me := fmt.Sprint(userID)

	var held []string
	for i, v := range vals {
		owner, ok := v.(string)
		if ok && owner != me {
			held = append(held, seats[i])
		}
	}

	return held, nil
}
