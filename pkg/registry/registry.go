// Package registry holds the ordered notification list. Readers take an
// immutable Snapshot; every mutation validates a modified copy and publishes
// it atomically, so an evaluation never observes a half-applied edit.
package registry

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Veraticus/chat-notify/pkg/types"
)

// Snapshot is a read-only view of the registry at one point in time.
type Snapshot struct {
	notifications []types.Notification
	version       uint64
}

// Len returns the number of notifications.
func (s *Snapshot) Len() int {
	return len(s.notifications)
}

// At returns the notification at priority i. Callers must not modify the
// slices inside the returned value.
func (s *Snapshot) At(i int) types.Notification {
	return s.notifications[i]
}

// Self returns the reserved notification at index 0.
func (s *Snapshot) Self() types.Notification {
	return s.notifications[0]
}

// Notifications returns deep copies of all notifications in priority order.
func (s *Snapshot) Notifications() []types.Notification {
	out := make([]types.Notification, len(s.notifications))
	for i, n := range s.notifications {
		out[i] = n.Clone()
	}
	return out
}

// Version increases with every published change.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Registry is the mutable owner of snapshots. Writers are serialized; readers
// never block.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New validates notifications and publishes them as the first snapshot. The
// first entry becomes the self notification.
func New(notifications []types.Notification) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(notifications); err != nil {
		return nil, err
	}
	return r, nil
}

// Snapshot returns the current immutable view.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Replace swaps in a whole new list, as done on configuration reload.
func (r *Registry) Replace(notifications []types.Notification) error {
	if len(notifications) == 0 {
		return &MutationError{Op: "replace", Index: 0, Err: ErrEmptyRegistry}
	}
	next := make([]types.Notification, len(notifications))
	for i, n := range notifications {
		if err := Validate(n, i == 0); err != nil {
			return &MutationError{Op: "replace", Index: i, Err: err}
		}
		next[i] = n.Clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish(next)
	return nil
}

// publish must be called with mu held.
func (r *Registry) publish(next []types.Notification) {
	var version uint64
	if cur := r.current.Load(); cur != nil {
		version = cur.version + 1
	}
	r.current.Store(&Snapshot{notifications: next, version: version})
}

// mutateList applies fn to a copy of the list and publishes the result.
func (r *Registry) mutateList(op string, index int, fn func([]types.Notification) ([]types.Notification, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	next, err := fn(slices.Clone(cur.notifications))
	if err != nil {
		return &MutationError{Op: op, Index: index, Err: err}
	}
	if len(next) == 0 {
		return &MutationError{Op: op, Index: index, Err: ErrEmptyRegistry}
	}
	r.publish(next)
	return nil
}

// update applies fn to a deep copy of notification index, validates it and
// publishes the result.
func (r *Registry) update(op string, index int, fn func(n *types.Notification) error) error {
	return r.mutateList(op, index, func(list []types.Notification) ([]types.Notification, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(list))
		}
		n := list[index].Clone()
		if err := fn(&n); err != nil {
			return nil, err
		}
		if err := Validate(n, index == 0); err != nil {
			return nil, err
		}
		list[index] = n
		return list, nil
	})
}

// Add appends a notification at the lowest priority and returns its index.
func (r *Registry) Add(n types.Notification) (int, error) {
	var index int
	err := r.mutateList("add", -1, func(list []types.Notification) ([]types.Notification, error) {
		if err := Validate(n, false); err != nil {
			return nil, err
		}
		index = len(list)
		return append(list, n.Clone()), nil
	})
	if err != nil {
		return -1, err
	}
	return index, nil
}

// Remove deletes a user notification. Index 0 is reserved.
func (r *Registry) Remove(index int) error {
	return r.mutateList("remove", index, func(list []types.Notification) ([]types.Notification, error) {
		if index == 0 {
			return nil, ErrReservedNotification
		}
		if err := checkIndex(index, len(list)); err != nil {
			return nil, err
		}
		return slices.Delete(list, index, index+1), nil
	})
}

// Move changes the priority of a user notification. Neither position may be
// the reserved index 0.
func (r *Registry) Move(from, to int) error {
	return r.mutateList("move", from, func(list []types.Notification) ([]types.Notification, error) {
		if from == 0 || to == 0 {
			return nil, ErrReservedNotification
		}
		if err := checkIndex(from, len(list)); err != nil {
			return nil, err
		}
		if err := checkIndex(to, len(list)); err != nil {
			return nil, err
		}
		return moveItem(list, from, to), nil
	})
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

func moveItem[T any](list []T, from, to int) []T {
	item := list[from]
	list = slices.Delete(list, from, from+1)
	return slices.Insert(list, to, item)
}

func removeItem[T any](list []T, i int) ([]T, error) {
	if err := checkIndex(i, len(list)); err != nil {
		return nil, err
	}
	return slices.Delete(slices.Clone(list), i, i+1), nil
}

func moveInList[T any](list []T, from, to int) ([]T, error) {
	if err := checkIndex(from, len(list)); err != nil {
		return nil, err
	}
	if err := checkIndex(to, len(list)); err != nil {
		return nil, err
	}
	return moveItem(slices.Clone(list), from, to), nil
}
