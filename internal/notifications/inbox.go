package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
)

// Inbox holds the locally cached notification list for one effective
// identity, kept newest-first. Live events are prepended exactly as they
// arrive; the list is never re-sorted. Mark operations apply optimistically
// and can be reverted when the persisted write fails.
type Inbox struct {
	mu    sync.Mutex
	items []models.Notification
}

// NewInbox returns an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Seed replaces local state with the initial fetch result, assumed
// newest-first as returned by the repository.
func (i *Inbox) Seed(items []models.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.items = append([]models.Notification(nil), items...)
}

// Prepend inserts a live-pushed notification at the head and reports whether
// it was new. Redeliveries of an id already held are ignored.
func (i *Inbox) Prepend(notification models.Notification) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, existing := range i.items {
		if existing.ID == notification.ID {
			return false
		}
	}
	i.items = append([]models.Notification{notification}, i.items...)
	return true
}

// MarkRead flags the notification as read locally and reports whether the
// notification was present and previously unread.
func (i *Inbox) MarkRead(id uuid.UUID, at time.Time) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range i.items {
		if i.items[idx].ID != id {
			continue
		}
		if i.items[idx].ReadAt != nil {
			return false
		}
		ts := at
		i.items[idx].ReadAt = &ts
		return true
	}
	return false
}

// MarkUnread reverts an optimistic MarkRead after a failed persist.
func (i *Inbox) MarkUnread(id uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range i.items {
		if i.items[idx].ID == id {
			i.items[idx].ReadAt = nil
			return
		}
	}
}

// MarkAllRead flags every unread notification and returns the ids affected
// so a failed persist can revert them.
func (i *Inbox) MarkAllRead(at time.Time) []uuid.UUID {
	i.mu.Lock()
	defer i.mu.Unlock()
	var affected []uuid.UUID
	for idx := range i.items {
		if i.items[idx].ReadAt != nil {
			continue
		}
		ts := at
		i.items[idx].ReadAt = &ts
		affected = append(affected, i.items[idx].ID)
	}
	return affected
}

// MarkManyUnread reverts a batch of optimistic reads.
func (i *Inbox) MarkManyUnread(ids []uuid.UUID) {
	for _, id := range ids {
		i.MarkUnread(id)
	}
}

// UnreadCount returns the number of locally unread notifications.
func (i *Inbox) UnreadCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	count := 0
	for idx := range i.items {
		if i.items[idx].ReadAt == nil {
			count++
		}
	}
	return count
}

// Snapshot returns a copy of the current list, newest-first.
func (i *Inbox) Snapshot() []models.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]models.Notification(nil), i.items...)
}
