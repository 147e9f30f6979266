// Package cart holds the in-progress order of a single ordering session.
//
// A Store is the only place quantities and totals are computed; callers read
// totals from it instead of summing lines themselves. Every operation is total:
// unknown ids are no-ops and nothing returns an error.
package cart

import "sync"

// Item is the catalog descriptor passed to AddItem.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Line is one distinct menu item in the cart. Name, UnitPrice and Category are
// copied from the catalog when the item is first added.
type Line struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
}

// Total is UnitPrice * Quantity.
func (l Line) Total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Snapshot is a point-in-time copy of the cart.
type Snapshot struct {
	Lines      []Line  `json:"lines"`
	TotalItems int     `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
}

// IsEmpty reports whether the snapshot holds no items.
func (s Snapshot) IsEmpty() bool {
	return s.TotalItems == 0
}

// Listener is notified after every mutation that changed the cart.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store is the cart state of one session.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	index     map[string]int
	listeners []subscription
	nextSubID int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// AddItem adds one unit of item. A new line starts at quantity 1, an existing
// line is incremented by 1.
func (s *Store) AddItem(item Item) {
	s.mu.Lock()
	if i, ok := s.index[item.ID]; ok {
		s.lines[i].Quantity++
	} else {
		s.index[item.ID] = len(s.lines)
		s.lines = append(s.lines, Line{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Category:  item.Category,
			Quantity:  1,
		})
	}
	s.commit()
}

// RemoveItem deletes the line for itemID if there is one.
func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	if !s.remove(itemID) {
		s.mu.Unlock()
		return
	}
	s.commit()
}

// UpdateQuantity sets the quantity of itemID to exactly quantity. A quantity of
// zero or less removes the line.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(itemID)
		return
	}

	s.mu.Lock()
	i, ok := s.index[itemID]
	if !ok || s.lines[i].Quantity == quantity {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity = quantity
	s.commit()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return
	}
	s.lines = nil
	s.index = make(map[string]int)
	s.commit()
}

// Deduct lowers each matching line by the quantity in lines, dropping lines
// that reach zero. Items added since lines were read stay in the cart.
func (s *Store) Deduct(lines []Line) {
	s.mu.Lock()
	changed := false
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		i, ok := s.index[l.ItemID]
		if !ok {
			continue
		}
		changed = true
		if s.lines[i].Quantity > l.Quantity {
			s.lines[i].Quantity -= l.Quantity
			continue
		}
		s.remove(l.ItemID)
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.commit()
}

// TotalItems is the sum of quantities over all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItems()
}

// TotalPrice is the sum of UnitPrice * Quantity over all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPrice()
}

// IsEmpty reports whether TotalItems is zero.
func (s *Store) IsEmpty() bool {
	return s.TotalItems() == 0
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

// Snapshot returns the lines and totals read under a single lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Restore replaces the cart with previously persisted lines without notifying
// listeners. Lines with a non-positive quantity are dropped and repeated ids
// are merged into the first occurrence.
func (s *Store) Restore(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make([]Line, 0, len(lines))
	s.index = make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := s.index[l.ItemID]; ok {
			s.lines[i].Quantity += l.Quantity
			continue
		}
		s.index[l.ItemID] = len(s.lines)
		s.lines = append(s.lines, l)
	}
}

// Subscribe registers fn to run after every mutation. Listeners run outside the
// store lock, in registration order. The returned func removes the listener.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// commit must be called with s.mu held. It releases the lock and then
// notifies listeners with the new state.
func (s *Store) commit() {
	snap := s.snapshot()
	listeners := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) remove(itemID string) bool {
	i, ok := s.index[itemID]
	if !ok {
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	delete(s.index, itemID)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].ItemID] = j
	}
	return true
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Lines:      s.copyLines(),
		TotalItems: s.totalItems(),
		TotalPrice: s.totalPrice(),
	}
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) totalItems() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) totalPrice() float64 {
	var total float64
	for _, l := range s.lines {
		total += l.Total()
	}
	return total
}
