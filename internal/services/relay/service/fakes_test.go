package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cardrelay/internal/core/pricing"
	"cardrelay/internal/core/shard"
	perr "cardrelay/internal/platform/errors"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
)

type call struct {
	op       string
	chatID   int64
	threadID int
	msgID    int
	text     string
	photo    string
}

// fakeChannel records every call in order
type fakeChannel struct {
	mu      sync.Mutex
	calls   []call
	nextID  int
	fail    map[string]error
	admins  map[int64]bool
	users   map[int64]dom.User
	threads int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{fail: map[string]error{}, admins: map[int64]bool{}, users: map[int64]dom.User{}, threads: 100}
}

func (f *fakeChannel) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.fail[c.op]
}

func (f *fakeChannel) id() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeChannel) SendText(_ context.Context, chatID int64, threadID int, text string) (dom.Handle, error) {
	id := f.id()
	if err := f.record(call{op: "send_text", chatID: chatID, threadID: threadID, msgID: id, text: text}); err != nil {
		return dom.Handle{}, err
	}
	return dom.Handle{ChatID: chatID, MessageID: id}, nil
}

func (f *fakeChannel) EditText(_ context.Context, h dom.Handle, text string) error {
	return f.record(call{op: "edit_text", chatID: h.ChatID, msgID: h.MessageID, text: text})
}

func (f *fakeChannel) DeleteText(_ context.Context, h dom.Handle) error {
	return f.record(call{op: "delete", chatID: h.ChatID, msgID: h.MessageID})
}

func (f *fakeChannel) SendPhoto(_ context.Context, chatID int64, threadID int, photoURL, caption string) (dom.Handle, error) {
	id := f.id()
	if err := f.record(call{op: "send_photo", chatID: chatID, threadID: threadID, msgID: id, text: caption, photo: photoURL}); err != nil {
		return dom.Handle{}, err
	}
	return dom.Handle{ChatID: chatID, MessageID: id}, nil
}

func (f *fakeChannel) CreateSubthread(_ context.Context, chatID int64, name string) (int, error) {
	f.mu.Lock()
	f.threads++
	tid := f.threads
	f.mu.Unlock()
	if err := f.record(call{op: "create_subthread", chatID: chatID, threadID: tid, text: name}); err != nil {
		return 0, err
	}
	return tid, nil
}

func (f *fakeChannel) ResolveUserDisplay(_ context.Context, chatID, userID int64) (dom.User, error) {
	f.mu.Lock()
	u, ok := f.users[userID]
	f.mu.Unlock()
	if !ok {
		return dom.User{}, errors.New("user not found")
	}
	return u, nil
}

func (f *fakeChannel) IsAdmin(_ context.Context, chatID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["is_admin"]; err != nil {
		return false, err
	}
	return f.admins[userID], nil
}

func (f *fakeChannel) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeChannel) ops(op string) []call {
	var out []call
	for _, c := range f.snapshot() {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// memStore is an in-memory ChatCategoryStore
type memStore struct {
	mu    sync.Mutex
	chats map[int64]dom.ChatRecord
	err   error
}

func newMemStore() *memStore { return &memStore{chats: map[int64]dom.ChatRecord{}} }

func (s *memStore) Get(_ context.Context, chatID int64) (dom.ChatRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return dom.ChatRecord{}, false, s.err
	}
	rec, ok := s.chats[chatID]
	return rec, ok, nil
}

func (s *memStore) Put(_ context.Context, chatID int64, category string, threadID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.chats[chatID]
	if !ok {
		return perr.NotFoundf("chat %d", chatID)
	}
	rec.Threads[category] = threadID
	return nil
}

func (s *memStore) Register(_ context.Context, chatID int64, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; ok {
		return false, nil
	}
	s.chats[chatID] = dom.ChatRecord{ChatID: chatID, Name: name, Threads: map[string]int{}}
	return true, nil
}

func (s *memStore) Remove(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chats[chatID]
	delete(s.chats, chatID)
	return ok, nil
}

// fakeResolver resolves identifiers listed in cards and fails the rest
type fakeResolver struct {
	mu    sync.Mutex
	cards map[string]*ldom.ProductCard
	seen  []string
	hook  func(id string)
}

func (r *fakeResolver) Resolve(_ context.Context, id string) ldom.ResolutionResult {
	r.mu.Lock()
	r.seen = append(r.seen, id)
	card, ok := r.cards[id]
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	if !ok {
		return ldom.ResolutionResult{
			Identifier: id,
			Err:        perr.Newf(perr.ErrorCodeExhaustedCandidates, "no card for %s", id),
		}
	}
	c := *card
	return ldom.ResolutionResult{Identifier: id, Card: &c, History: pricing.NoHistory()}
}

func (r *fakeResolver) resolved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func card(category string) *ldom.ProductCard {
	return &ldom.ProductCard{
		DisplayName: "Товар " + category,
		Category:    category,
		Subcategory: "Одежда",
		ImageURL:    fmt.Sprintf("https://basket-01.wbbasket.ru/vol12/part1234/%s/images/big/1.jpg", category),
		Affinity:    shard.Affinity{MirrorIndex: 1, Host: "basket-01.wbbasket.ru", Volume: "12", Part: "1234"},
	}
}
