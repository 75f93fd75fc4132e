package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
)

func notificationAt(offset time.Duration) models.Notification {
	return models.Notification{
		ID:        uuid.New(),
		CreatedAt: time.Now().Add(offset),
	}
}

func TestInboxLivePushPrependsExactly(t *testing.T) {
	n1 := notificationAt(-3 * time.Hour)
	n2 := notificationAt(-2 * time.Hour)
	n3 := notificationAt(-time.Hour)

	inbox := NewInbox()
	inbox.Seed([]models.Notification{n3, n2, n1})

	n4 := notificationAt(0)
	if !inbox.Prepend(n4) {
		t.Fatal("a new notification must be accepted")
	}

	got := inbox.Snapshot()
	want := []uuid.UUID{n4.ID, n3.ID, n2.ID, n1.ID}
	if len(got) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(got))
	}
	for idx, id := range want {
		if got[idx].ID != id {
			t.Fatalf("position %d: expected %s, got %s", idx, id, got[idx].ID)
		}
	}
}

func TestInboxPrependIgnoresRedelivery(t *testing.T) {
	n1 := notificationAt(-time.Hour)

	inbox := NewInbox()
	inbox.Seed([]models.Notification{n1})
	if inbox.Prepend(n1) {
		t.Fatal("a redelivered notification must be reported as already held")
	}

	if got := inbox.Snapshot(); len(got) != 1 {
		t.Fatalf("redelivered notification must not duplicate, got %d items", len(got))
	}
}

func TestInboxSeedReplacesState(t *testing.T) {
	inbox := NewInbox()
	inbox.Seed([]models.Notification{notificationAt(-time.Hour)})
	fresh := notificationAt(0)
	inbox.Seed([]models.Notification{fresh})

	got := inbox.Snapshot()
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Fatalf("seed must replace local state, got %v", got)
	}
}

func TestInboxOptimisticMarkReadAndRevert(t *testing.T) {
	n1 := notificationAt(-time.Hour)

	inbox := NewInbox()
	inbox.Seed([]models.Notification{n1})
	if inbox.UnreadCount() != 1 {
		t.Fatalf("expected 1 unread")
	}

	if !inbox.MarkRead(n1.ID, time.Now()) {
		t.Fatal("first mark must report a change")
	}
	if inbox.UnreadCount() != 0 {
		t.Fatal("mark read must apply immediately")
	}
	if inbox.MarkRead(n1.ID, time.Now()) {
		t.Fatal("marking an already read notification must report no change")
	}

	// Persist failed: the optimistic flag is rolled back.
	inbox.MarkUnread(n1.ID)
	if inbox.UnreadCount() != 1 {
		t.Fatal("revert must restore the unread flag")
	}
}

func TestInboxMarkAllReadReturnsAffectedIDs(t *testing.T) {
	read := notificationAt(-2 * time.Hour)
	readAt := time.Now().Add(-time.Hour)
	read.ReadAt = &readAt
	unreadA := notificationAt(-time.Hour)
	unreadB := notificationAt(0)

	inbox := NewInbox()
	inbox.Seed([]models.Notification{unreadB, unreadA, read})

	affected := inbox.MarkAllRead(time.Now())
	if len(affected) != 2 {
		t.Fatalf("expected 2 affected ids, got %d", len(affected))
	}
	if inbox.UnreadCount() != 0 {
		t.Fatal("everything must be read locally")
	}

	inbox.MarkManyUnread(affected)
	if inbox.UnreadCount() != 2 {
		t.Fatal("revert must restore exactly the affected notifications")
	}
}

func TestInboxMarkReadUnknownID(t *testing.T) {
	inbox := NewInbox()
	inbox.Seed([]models.Notification{notificationAt(-time.Hour)})

	if inbox.MarkRead(uuid.New(), time.Now()) {
		t.Fatal("unknown id must report no change")
	}
}
