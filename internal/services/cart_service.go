package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud-kitchen-backend/internal/cart"
	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"

	"github.com/rs/zerolog"
)

const persistTimeout = 5 * time.Second

// Catalog resolves the item ids the cart is asked to add.
type Catalog interface {
	Get(ctx context.Context, itemID string) (*models.MenuItem, error)
}

type cartSession struct {
	store       *cart.Store
	unsubscribe func()
	persistMu   sync.Mutex
	ended       bool // guarded by persistMu
	lastAccess  time.Time
}

// CartService keeps one cart.Store per ordering session. Stores are hydrated
// lazily from Redis, then Postgres, and every mutation is written back to both.
type CartService struct {
	catalog  Catalog
	cartRepo repositories.CartRepository
	cache    Cache
	cacheTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*cartSession
}

func NewCartService(
	catalog Catalog,
	cartRepo repositories.CartRepository,
	cache Cache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *CartService {
	return &CartService{
		catalog:  catalog,
		cartRepo: cartRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*cartSession),
	}
}

func cartCacheKey(sessionID string) string {
	return "cart:" + sessionID
}

// Open returns the store for sessionID, creating and hydrating it on first use.
func (s *CartService) Open(ctx context.Context, sessionID string) (*cart.Store, error) {
	if sess := s.lookup(sessionID); sess != nil {
		return sess.store, nil
	}

	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading cart for session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another request may have opened the session while we were loading
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastAccess = s.now()
		return sess.store, nil
	}

	store := cart.NewStore()
	store.Restore(lines)

	sess := &cartSession{store: store, lastAccess: s.now()}
	sess.unsubscribe = store.Subscribe(func(cart.Snapshot) {
		s.persist(sessionID, sess)
	})
	s.sessions[sessionID] = sess

	return store, nil
}

func (s *CartService) lookup(sessionID string) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	sess.lastAccess = s.now()
	return sess
}

func (s *CartService) load(ctx context.Context, sessionID string) ([]cart.Line, error) {
	var cached cart.Snapshot
	if err := s.cache.Get(ctx, cartCacheKey(sessionID), &cached); err == nil {
		return cached.Lines, nil
	}

	snapshot, err := s.cartRepo.Get(ctx, sessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromLineItems(snapshot.Lines), nil
}

// persist writes the store's current state. Listeners may run concurrently for
// one session, so the state is re-read under the session's persist lock and the
// last writer always stores the newest cart.
func (s *CartService) persist(sessionID string, sess *cartSession) {
	sess.persistMu.Lock()
	defer sess.persistMu.Unlock()

	if sess.ended {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	snap := sess.store.Snapshot()

	if err := s.cartRepo.Save(ctx, &models.CartSnapshot{
		SessionID:  sessionID,
		Lines:      toLineItems(snap.Lines),
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice,
		UpdatedAt:  s.now().UTC(),
	}); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("saving cart snapshot")
	}

	if err := s.cache.Set(ctx, cartCacheKey(sessionID), snap, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("caching cart snapshot")
	}
}

func (s *CartService) View(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// AddItem adds one unit of the catalog item itemID.
func (s *CartService) AddItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error) {
	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if !item.IsAvailable {
		return cart.Snapshot{}, ErrItemUnavailable
	}

	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}

	store.AddItem(cart.Item{
		ID:       item.ItemID(),
		Name:     item.Name,
		Price:    item.Price,
		Category: item.Category,
	})

	s.log.Debug().Str("session_id", sessionID).Str("item_id", itemID).Msg("item added to cart")
	return store.Snapshot(), nil
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	store.RemoveItem(itemID)
	return store.Snapshot(), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (cart.Snapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	store.UpdateQuantity(itemID, quantity)
	return store.Snapshot(), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	store.Clear()
	return store.Snapshot(), nil
}

// Deduct removes the ordered lines from the session's cart, keeping anything
// added after they were read.
func (s *CartService) Deduct(ctx context.Context, sessionID string, lines []cart.Line) (cart.Snapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	store.Deduct(lines)
	return store.Snapshot(), nil
}

// EndSession tears the session down and deletes its persisted cart.
func (s *CartService) EndSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		sess.unsubscribe()
		// a listener already dispatched may still call persist; ended makes
		// it a no-op so the row deleted below is not written again
		sess.persistMu.Lock()
		sess.ended = true
		defer sess.persistMu.Unlock()
	}

	if err := s.cartRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting cart for session %s: %w", sessionID, err)
	}
	if err := s.cache.Delete(ctx, cartCacheKey(sessionID)); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("deleting cached cart")
	}

	s.log.Info().Str("session_id", sessionID).Msg("session ended")
	return nil
}

// Evict drops in-memory stores not touched for idle. Their persisted state is
// kept and reloaded on the next access.
func (s *CartService) Evict(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastAccess.Before(cutoff) {
			sess.unsubscribe()
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// ActiveSessions is the number of stores held in memory.
func (s *CartService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func toLineItems(lines []cart.Line) models.LineItems {
	out := make(models.LineItems, len(lines))
	for i, l := range lines {
		out[i] = models.LineItem{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Category:  l.Category,
			Quantity:  l.Quantity,
		}
	}
	return out
}

func fromLineItems(items models.LineItems) []cart.Line {
	out := make([]cart.Line, len(items))
	for i, l := range items {
		out[i] = cart.Line{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Category:  l.Category,
			Quantity:  l.Quantity,
		}
	}
	return out
}
