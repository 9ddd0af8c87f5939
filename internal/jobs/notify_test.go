package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Spok95/mycsd-points/internal/memstore"
	"github.com/Spok95/mycsd-points/internal/models"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

type fakeBot struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail map[int64]error
}

func newFakeBot() *fakeBot {
	return &fakeBot{sent: make(map[int64][]string), fail: make(map[int64]error)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, nil
	}
	if err := b.fail[msg.ChatID]; err != nil {
		return tgbotapi.Message{}, err
	}
	b.sent[msg.ChatID] = append(b.sent[msg.ChatID], msg.Text)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// approved seeds an event with present students and approves its claim.
func approved(t *testing.T, store *memstore.Store, students map[string]*int64) {
	t.Helper()
	ctx := context.Background()
	adminID, orgID := uuid.New(), uuid.New()
	store.PutUser(models.User{ID: adminID, Role: models.Admin, Name: "Admin"})
	store.PutUser(models.User{ID: orgID, Role: models.Organizer, Name: "Kelab"})
	ev := models.Event{ID: uuid.New(), Title: "Larian Amal", Status: models.EventCompleted, OrganizerID: orgID, Level: "Antarabangsa"}
	store.PutEvent(ev)
	for matric, chat := range students {
		m := matric
		u := models.User{ID: uuid.New(), Role: models.Student, Name: m, MatricNo: &m, TelegramID: chat}
		store.PutUser(u)
		store.PutRegistration(models.Registration{EventID: ev.ID, UserID: u.ID, Attendance: models.AttendancePresent})
	}
	svc := mycsd.NewService(store, nil)
	c, err := svc.SubmitClaim(ctx, models.Actor{UserID: orgID, Role: models.Organizer},
		mycsd.SubmitClaimInput{EventID: ev.ID, DocumentRef: "cert.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Approve(ctx, models.Actor{UserID: adminID, Role: models.Admin}, c.ID); err != nil {
		t.Fatal(err)
	}
}

func chat(id int64) *int64 { return &id }

func TestNotificationDispatcher_DeliversAndMarks(t *testing.T) {
	store := memstore.New()
	approved(t, store, map[string]*int64{"S1": chat(101), "S2": chat(102), "S3": nil})
	bot := newFakeBot()
	d := NewNotificationDispatcher(store, bot, nil, 10)

	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "You have received 8 points for attending Larian Amal"
	for _, id := range []int64{101, 102} {
		if got := bot.sent[id]; len(got) != 1 || got[0] != want {
			t.Fatalf("chat %d got %v", id, got)
		}
	}

	// второй проход ничего не шлёт повторно
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bot.sent[101]) != 1 {
		t.Fatalf("duplicate delivery: %v", bot.sent[101])
	}
	var sent int
	for _, n := range store.Notifications() {
		if n.SentAt != nil {
			sent++
		}
	}
	if sent != 2 {
		t.Fatalf("marked sent = %d", sent)
	}
}

func TestNotificationDispatcher_RetriesThenGivesUp(t *testing.T) {
	store := memstore.New()
	approved(t, store, map[string]*int64{"S1": chat(201)})
	bot := newFakeBot()
	bot.fail[201] = errors.New("Too Many Requests: retry after 1 (429)")
	d := NewNotificationDispatcher(store, bot, nil, 10)

	for i := 0; i < memstore.MaxNotificationAttempts+2; i++ {
		if err := d.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	n := store.Notifications()[0]
	if n.SentAt != nil || n.Attempts != memstore.MaxNotificationAttempts || n.LastError == nil {
		t.Fatalf("notification = %+v", n)
	}
	pending, _ := store.PendingNotifications(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("exhausted notification still pending: %d", len(pending))
	}
}

func TestNotificationDispatcher_PermanentFailureNotRetried(t *testing.T) {
	store := memstore.New()
	approved(t, store, map[string]*int64{"S1": chat(301), "S2": chat(302)})
	bot := newFakeBot()
	bot.fail[301] = errors.New("Forbidden: bot was blocked by the user")
	d := NewNotificationDispatcher(store, bot, nil, 10)

	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	pending, _ := store.PendingNotifications(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("blocked chat still queued: %+v", pending)
	}
	for _, n := range store.Notifications() {
		switch {
		case n.SentAt != nil:
		case n.Attempts != memstore.MaxNotificationAttempts || n.LastError == nil:
			t.Fatalf("blocked notification = %+v", n)
		}
	}
	if len(bot.sent[302]) != 1 {
		t.Fatalf("healthy chat got %v", bot.sent[302])
	}

	bot.fail[301] = nil
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(bot.sent[301]) != 0 {
		t.Fatalf("abandoned notification retried: %v", bot.sent[301])
	}
}

func TestRunner_RecoversPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := New(ctx, nil)

	var (
		mu    sync.Mutex
		calls int
	)
	done := make(chan struct{})
	r.Every(5*time.Millisecond, "panicky", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 3 {
			close(done)
		}
		if calls == 1 {
			panic("boom")
		}
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner stopped after panic")
	}
}
