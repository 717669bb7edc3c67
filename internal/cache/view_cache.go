package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewCache holds rendered view payloads in Redis so the UI can re-read
// cheaply between mutations. Mutation handlers invalidate the affected paths;
// that invalidation is the revalidation signal. Cache trouble degrades to
// direct database reads and is never surfaced to the caller.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewViewCache builds the cache around an existing client.
func NewViewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ViewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ViewCache{client: client, ttl: ttl, logger: logger}
}

func ticketListKey(ownerID int64) string {
	return fmt.Sprintf("views:tickets:%d", ownerID)
}

// ticketKey includes the owner so a cached detail view can only ever be
// served back to the account that rendered it.
func ticketKey(ownerID, id int64) string {
	return fmt.Sprintf("views:ticket:%d:%d", ownerID, id)
}

// GetTicketList returns the cached list view for an owner, if present.
func (v *ViewCache) GetTicketList(ctx context.Context, ownerID int64) ([]byte, bool) {
	return v.get(ctx, ticketListKey(ownerID))
}

// SetTicketList stores the rendered list view for an owner.
func (v *ViewCache) SetTicketList(ctx context.Context, ownerID int64, payload []byte) {
	v.set(ctx, ticketListKey(ownerID), payload)
}

// GetTicket returns the cached detail view for a ticket, if present.
func (v *ViewCache) GetTicket(ctx context.Context, ownerID, id int64) ([]byte, bool) {
	return v.get(ctx, ticketKey(ownerID, id))
}

// SetTicket stores the rendered detail view for a ticket.
func (v *ViewCache) SetTicket(ctx context.Context, ownerID, id int64, payload []byte) {
	v.set(ctx, ticketKey(ownerID, id), payload)
}

// InvalidateTicketList drops the list view for an owner.
func (v *ViewCache) InvalidateTicketList(ctx context.Context, ownerID int64) {
	v.invalidate(ctx, ticketListKey(ownerID))
}

// InvalidateTicket drops the detail view for a ticket.
func (v *ViewCache) InvalidateTicket(ctx context.Context, ownerID, id int64) {
	v.invalidate(ctx, ticketKey(ownerID, id))
}

func (v *ViewCache) get(ctx context.Context, key string) ([]byte, bool) {
	if v == nil || v.client == nil {
		return nil, false
	}
	payload, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && v.logger != nil {
			v.logger.Debug("view cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (v *ViewCache) set(ctx context.Context, key string, payload []byte) {
	if v == nil || v.client == nil {
		return
	}
	if err := v.client.Set(ctx, key, payload, v.ttl).Err(); err != nil && v.logger != nil {
		v.logger.Debug("view cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (v *ViewCache) invalidate(ctx context.Context, key string) {
	if v == nil || v.client == nil {
		return
	}
	if err := v.client.Del(ctx, key).Err(); err != nil && v.logger != nil {
		v.logger.Debug("view cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
