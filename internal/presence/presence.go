package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/duskhaven/server/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is the JSON payload published on the presence channel so lobby and
// chat services can track who is online without touching the game database.
type Event struct {
	Type   string `json:"type"` // "login" or "logout"
	Server string `json:"server"`
	CharID int32  `json:"char_id"`
	Name   string `json:"name"`
	MapID  int32  `json:"map_id,omitempty"`
	At     int64  `json:"at"`
}

const (
	EventLogin  = "login"
	EventLogout = "logout"
)

// Bridge mirrors character presence into Redis: a set of online character
// names plus a pub/sub event per login and logout. Writes go through a
// single worker goroutine so the game loop never blocks on Redis and events
// for one character keep their order.
type Bridge struct {
	client  *redis.Client
	log     *zap.Logger
	server  string
	prefix  string
	channel string
	queue   chan Event
	done    chan struct{}
}

func NewBridge(cfg config.RedisConfig, server string, log *zap.Logger) *Bridge {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Bridge{
		client:  client,
		log:     log,
		server:  server,
		prefix:  cfg.KeyPrefix,
		channel: cfg.Channel,
		queue:   make(chan Event, 256),
		done:    make(chan struct{}),
	}
}

func (b *Bridge) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Start launches the publish worker. Call exactly once.
func (b *Bridge) Start() {
	go b.run()
}

func (b *Bridge) run() {
	defer close(b.done)
	for ev := range b.queue {
		b.apply(ev)
	}
}

func (b *Bridge) apply(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := b.onlineKey()
	var err error
	switch ev.Type {
	case EventLogin:
		err = b.client.SAdd(ctx, key, ev.Name).Err()
	case EventLogout:
		err = b.client.SRem(ctx, key, ev.Name).Err()
	}
	if err != nil {
		b.log.Warn("presence set update failed",
			zap.String("type", ev.Type), zap.String("name", ev.Name), zap.Error(err))
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Warn("presence event marshal failed", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.log.Warn("presence event publish failed",
			zap.String("type", ev.Type), zap.String("name", ev.Name), zap.Error(err))
	}
}

func (b *Bridge) onlineKey() string {
	return b.prefix + ":online"
}

// CharacterOnline enqueues a login event. Drops with a warning if the queue
// is full rather than stalling the caller.
func (b *Bridge) CharacterOnline(charID int32, name string, mapID int32) {
	b.enqueue(Event{
		Type:   EventLogin,
		Server: b.server,
		CharID: charID,
		Name:   name,
		MapID:  mapID,
		At:     time.Now().Unix(),
	})
}

// CharacterOffline enqueues a logout event.
func (b *Bridge) CharacterOffline(charID int32, name string) {
	b.enqueue(Event{
		Type:   EventLogout,
		Server: b.server,
		CharID: charID,
		Name:   name,
		At:     time.Now().Unix(),
	})
}

func (b *Bridge) enqueue(ev Event) {
	select {
	case b.queue <- ev:
	default:
		b.log.Warn("presence queue full, event dropped",
			zap.String("type", ev.Type), zap.String("name", ev.Name))
	}
}

// OnlineCount returns the size of the online set.
func (b *Bridge) OnlineCount(ctx context.Context) (int64, error) {
	return b.client.SCard(ctx, b.onlineKey()).Result()
}

// Close drains the queue, stops the worker and closes the client.
func (b *Bridge) Close() error {
	close(b.queue)
	<-b.done
	return b.client.Close()
}
