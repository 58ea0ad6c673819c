package credstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
)

type (
	// Cached keeps recently resolved session tokens in memory.
	//
	// The cache is local to the process: any update going through Cached
	// evicts the user's token, but writes made by other processes are only
	// observed once the entry expires.
	Cached struct {
		Store

		// writers hold the lock exclusively so a lookup can never cache
		// a user that is being modified
		lock  sync.RWMutex
		cache *bigcache.BigCache
		enc   cbor.EncMode
		ttl   time.Duration
		now   func() time.Time
	}

	// cacheEntry carries its own deadline, bigcache keeps serving expired
	// entries until the next clean window
	cacheEntry struct {
		Expires time.Time `cbor:"1,keyasint"`
		User    User      `cbor:"2,keyasint"`
	}

	xxhasher struct{}
)

func (xxhasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

// NewCached wraps inner with a token cache whose entries live for ttl.
func NewCached(ctx context.Context, inner Store, ttl time.Duration) (*Cached, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Hasher = xxhasher{}
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 10 * 1024
	cfg.CleanWindow = ttl / 4
	if cfg.CleanWindow < time.Second {
		cfg.CleanWindow = time.Second
	}
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create session cache, cause %w", err)
	}
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("unable to configure cache encoding, cause %w", err)
	}
	return &Cached{
		Store: inner,
		cache: cache,
		enc:   enc,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

func (c *Cached) FindBySessionToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, UserNotFound{Key: token}
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	if u, ok := c.lookup(ctx, token); ok {
		return u, nil
	}
	u, err := c.Store.FindBySessionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	c.save(ctx, token, u)
	return u, nil
}

func (c *Cached) Update(ctx context.Context, id string, fields Fields) (*User, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	old, err := c.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, old)
	return c.Store.Update(ctx, id, fields)
}

func (c *Cached) Close() error {
	err := c.cache.Close()
	if innerErr := c.Store.Close(); innerErr != nil {
		return innerErr
	}
	return err
}

func (c *Cached) lookup(ctx context.Context, token string) (*User, bool) {
	buf, err := c.cache.Get(token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false
	}
	log := logutil.GetOrDefault(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Unable to read session cache")
		return nil, false
	}
	var entry cacheEntry
	if err := cbor.Unmarshal(buf, &entry); err != nil {
		log.Error().Err(err).Msg("Corrupted session cache entry")
		c.cache.Delete(token)
		return nil, false
	}
	if !c.now().Before(entry.Expires) {
		c.cache.Delete(token)
		return nil, false
	}
	return &entry.User, true
}

func (c *Cached) save(ctx context.Context, token string, u *User) {
	log := logutil.GetOrDefault(ctx)
	buf, err := c.enc.Marshal(cacheEntry{Expires: c.now().Add(c.ttl), User: *u})
	if err != nil {
		log.Error().Err(err).Msg("Unable to encode session cache entry")
		return
	}
	if err := c.cache.Set(token, buf); err != nil {
		log.Error().Err(err).Msg("Unable to write session cache")
	}
}

func (c *Cached) evict(ctx context.Context, u *User) {
	if !u.HasSession() {
		return
	}
	err := c.cache.Delete(*u.SessionToken)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Str("userID", u.ID).Msg("Unable to evict session")
	}
}
