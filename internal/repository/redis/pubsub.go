package redis

import (
	"context"
	"encoding/json"
	"time"

	redisx "github.com/bookmyseat/bms-go/internal/redis"
	"github.com/redis/go-redis/v9"
)

// BusesPubSub broadcasts bus-changed notifications (seat bookings, delay
// updates) so other instances can drop their cached copies.
type BusesPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBusesPubSub(rdb *redis.Client) *BusesPubSub {
	return &BusesPubSub{
		rdb:     rdb,
		channel: redisx.ChannelBusesChanged(),
	}
}

type busChangedMsg struct {
	Type   string `json:"type"`
	BusID  string `json:"bus_id"`
	TsUnix int64  `json:"ts_unix"`
}

func (p *BusesPubSub) PublishBusChanged(ctx context.Context, busID string) error {
	msg := busChangedMsg{
		Type:   "bus_changed",
		BusID:  busID,
		TsUnix: time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *BusesPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, busID string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev busChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.BusID != "" {
				handler(ctx, ev.BusID)
			}
		}
	}
}
