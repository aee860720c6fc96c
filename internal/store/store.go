package store

import (
	"sync"
	"time"

	"ripple-chat/internal/domain"
)

// Store owns every entity instance in the process. Nothing outside this
// package touches the maps directly; callers get copies and write back
// through Tx methods.
//
// All access goes through View or Update. Update holds the write lock
// for the whole callback, so a check-then-act sequence (membership
// lookup followed by insert, capacity check followed by add) is atomic
// with respect to every other transaction. Mutation operations must do
// no I/O inside the callback.
type Store struct {
	mu sync.RWMutex

	users       *table[domain.User]
	chats       *table[domain.Chat]
	memberships *table[domain.Membership]
	messages    *table[domain.Message]
	statuses    *table[domain.Status]
	statusViews *table[domain.StatusView]

	// Secondary indices, maintained incrementally on insert/delete so
	// query cost tracks result size, not store size.
	userByUID      map[string]int64
	userByEmail    map[string]int64
	membersByChat  map[int64]map[int64]int64 // chatID -> userID -> membershipID
	chatsByUser    map[int64]map[int64]struct{}
	messagesByChat map[int64][]int64
	statusesByUser map[int64][]int64
	viewsByStatus  map[int64]map[int64]int64 // statusID -> viewerID -> statusViewID
}

func New() *Store {
	return &Store{
		users:          newTable[domain.User](),
		chats:          newTable[domain.Chat](),
		memberships:    newTable[domain.Membership](),
		messages:       newTable[domain.Message](),
		statuses:       newTable[domain.Status](),
		statusViews:    newTable[domain.StatusView](),
		userByUID:      make(map[string]int64),
		userByEmail:    make(map[string]int64),
		membersByChat:  make(map[int64]map[int64]int64),
		chatsByUser:    make(map[int64]map[int64]struct{}),
		messagesByChat: make(map[int64][]int64),
		statusesByUser: make(map[int64][]int64),
		viewsByStatus:  make(map[int64]map[int64]int64),
	}
}

// Tx is a handle onto the store for the duration of one View or Update
// callback. It must not escape the callback.
type Tx struct {
	s        *Store
	writable bool
	now      time.Time
}

// View runs fn under the read lock. Projections run here.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{s: s, now: time.Now()})
}

// Update runs fn under the write lock. Mutations run here.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s, writable: true, now: time.Now()})
}

// UpdateAt is Update with an explicit transaction timestamp, used by
// callers that stamp creation and expiry times from their own clock.
func (s *Store) UpdateAt(now time.Time, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s, writable: true, now: now})
}

// ViewAt is View with an explicit snapshot timestamp, used for
// expiry-sensitive reads.
func (s *Store) ViewAt(now time.Time, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{s: s, now: now})
}

// Now is the timestamp the transaction was opened with. All rows
// stamped inside one transaction share it.
func (tx *Tx) Now() time.Time {
	return tx.now
}
