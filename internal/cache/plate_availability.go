package cache

import (
	"context"
	"fmt"
	"plate-rescue/internal/model"
	apperrors "plate-rescue/pkg/app_errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const availableIndexKey = "plates:available"

// keep hashes around a little after the window closes so late reads still resolve
const expiryGrace = time.Hour

type PlateAvailabilityCache interface {
	// Set writes the plate's marketplace view unless a newer one is already cached.
	Set(ctx context.Context, plate *model.Plate) (bool, error)
	Get(ctx context.Context, plateID int) (model.PlateAvailability, error)
	// List returns plates open at now with stock left, soonest window end first.
	List(ctx context.Context, now time.Time) ([]model.PlateAvailability, error)
	Remove(ctx context.Context, plateID int) error
}

type RedisPlateAvailabilityCache struct {
	client *redis.Client
}

func NewPlateAvailabilityCache(client *redis.Client) PlateAvailabilityCache {
	return &RedisPlateAvailabilityCache{
		client: client,
	}
}

func availabilityKey(plateID int) string {
	return fmt.Sprintf("plate:%d:availability", plateID)
}

// Units sold only grow, so they order writes coming from concurrent
// refreshes: an older snapshot (fewer sold) never overwrites a newer one.
var setAvailabilityScript = redis.NewScript(`
	local key = KEYS[1]
	local index = KEYS[2]
	local sold = tonumber(ARGV[1])

	local current = redis.call('HGET', key, 'sold')
	if current and tonumber(current) > sold then
		return 0
	end

	redis.call('HSET', key,
		'sold', ARGV[1],
		'plate_id', ARGV[2],
		'title', ARGV[3],
		'price', ARGV[4],
		'available', ARGV[5],
		'window_start', ARGV[6],
		'window_end', ARGV[7])
	redis.call('EXPIREAT', key, ARGV[8])

	if tonumber(ARGV[5]) > 0 then
		redis.call('ZADD', index, ARGV[7], ARGV[2])
	else
		redis.call('ZREM', index, ARGV[2])
	end

	return 1
`)

func (c *RedisPlateAvailabilityCache) Set(ctx context.Context, plate *model.Plate) (bool, error) {
	if !plate.IsActive {
		return false, c.Remove(ctx, plate.ID)
	}

	res, err := setAvailabilityScript.Run(ctx, c.client,
		[]string{availabilityKey(plate.ID), availableIndexKey},
		plate.Sold(),
		plate.ID,
		plate.Title,
		plate.Price.String(),
		plate.QuantityAvailable,
		plate.WindowStart.UnixMilli(),
		plate.WindowEnd.UnixMilli(),
		plate.WindowEnd.Add(expiryGrace).Unix(),
	).Int()
	if err != nil {
		return false, err
	}

	return res == 1, nil
}

func (c *RedisPlateAvailabilityCache) Get(ctx context.Context, plateID int) (model.PlateAvailability, error) {
	result, err := c.client.HGetAll(ctx, availabilityKey(plateID)).Result()
	if err != nil {
		return model.PlateAvailability{}, err
	}

	if len(result) == 0 {
		return model.PlateAvailability{}, apperrors.ErrPlateNotFound
	}

	return parseAvailability(result)
}

func (c *RedisPlateAvailabilityCache) List(ctx context.Context, now time.Time) ([]model.PlateAvailability, error) {
	ids, err := c.client.ZRangeByScore(ctx, availableIndexKey, &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, "plate:"+id+":availability")
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
	}

	plates := make([]model.PlateAvailability, 0, len(ids))
	var stale []interface{}
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			stale = append(stale, ids[i])
			continue
		}

		a, err := parseAvailability(fields)
		if err != nil {
			return nil, err
		}
		if a.QuantityAvailable <= 0 || now.Before(a.WindowStart) {
			continue
		}
		plates = append(plates, a)
	}

	if len(stale) > 0 {
		_ = c.client.ZRem(ctx, availableIndexKey, stale...).Err()
	}

	return plates, nil
}

func (c *RedisPlateAvailabilityCache) Remove(ctx context.Context, plateID int) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, availabilityKey(plateID))
	pipe.ZRem(ctx, availableIndexKey, strconv.Itoa(plateID))
	_, err := pipe.Exec(ctx)
	return err
}

func parseAvailability(fields map[string]string) (model.PlateAvailability, error) {
	plateID, err := strconv.Atoi(fields["plate_id"])
	if err != nil {
		return model.PlateAvailability{}, fmt.Errorf("invalid plate_id: %w", err)
	}

	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return model.PlateAvailability{}, fmt.Errorf("invalid price: %w", err)
	}

	available, err := strconv.Atoi(fields["available"])
	if err != nil {
		return model.PlateAvailability{}, fmt.Errorf("invalid available: %w", err)
	}

	start, err := strconv.ParseInt(fields["window_start"], 10, 64)
	if err != nil {
		return model.PlateAvailability{}, fmt.Errorf("invalid window_start: %w", err)
	}

	end, err := strconv.ParseInt(fields["window_end"], 10, 64)
	if err != nil {
		return model.PlateAvailability{}, fmt.Errorf("invalid window_end: %w", err)
	}

	return model.PlateAvailability{
		PlateID:           plateID,
		Title:             fields["title"],
		Price:             price,
		QuantityAvailable: available,
		WindowStart:       time.UnixMilli(start).UTC(),
		WindowEnd:         time.UnixMilli(end).UTC(),
	}, nil
}
