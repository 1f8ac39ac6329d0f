package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	perr "cardrelay/internal/platform/errors"

	dom "cardrelay/internal/services/relay/domain"
)

// fileDoc is the on-disk layout: {"chats_id": {"<chat id>": {"name": .., "threads_id": {..}}}}
type fileDoc struct {
	Chats map[string]fileChat `json:"chats_id"`
}

type fileChat struct {
	Name    string         `json:"name"`
	Threads map[string]int `json:"threads_id"`
}

// FileStore keeps the chat mapping in a single JSON document.
// The document is read once at open and rewritten on every change
type FileStore struct {
	mu   sync.Mutex
	path string
	doc  fileDoc
}

// OpenFile loads path, starting empty when the file does not exist yet
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, doc: fileDoc{Chats: map[string]fileChat{}}}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read chat store %s", path)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeMalformed, "decode chat store %s", path)
	}
	if s.doc.Chats == nil {
		s.doc.Chats = map[string]fileChat{}
	}
	return s, nil
}

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

// Get implements dom.ChatCategoryStore
func (s *FileStore) Get(_ context.Context, chatID int64) (dom.ChatRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.doc.Chats[key(chatID)]
	if !ok {
		return dom.ChatRecord{}, false, nil
	}
	return dom.ChatRecord{ChatID: chatID, Name: c.Name, Threads: cloneThreads(c.Threads)}, true, nil
}

// Put implements dom.ChatCategoryStore
func (s *FileStore) Put(_ context.Context, chatID int64, category string, threadID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.doc.Chats[key(chatID)]
	if !ok {
		return perr.NotFoundf("chat %d is not registered", chatID)
	}
	if c.Threads == nil {
		c.Threads = map[string]int{}
	}
	prev, had := c.Threads[category]
	c.Threads[category] = threadID
	s.doc.Chats[key(chatID)] = c
	if err := s.flush(); err != nil {
		if had {
			c.Threads[category] = prev
		} else {
			delete(c.Threads, category)
		}
		return err
	}
	return nil
}

// Register implements dom.ChatCategoryStore
func (s *FileStore) Register(_ context.Context, chatID int64, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(chatID)
	if _, ok := s.doc.Chats[k]; ok {
		return false, nil
	}
	s.doc.Chats[k] = fileChat{Name: name, Threads: map[string]int{}}
	if err := s.flush(); err != nil {
		delete(s.doc.Chats, k)
		return false, err
	}
	return true, nil
}

// Remove implements dom.ChatCategoryStore
func (s *FileStore) Remove(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(chatID)
	c, ok := s.doc.Chats[k]
	if !ok {
		return false, nil
	}
	delete(s.doc.Chats, k)
	if err := s.flush(); err != nil {
		s.doc.Chats[k] = c
		return false, err
	}
	return true, nil
}

// flush writes a temp file next to path and renames it over; callers hold mu
func (s *FileStore) flush() error {
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode chat store")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".chats-*.json")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "create temp in %s", dir)
	}
	name := tmp.Name()
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "write chat store")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "close chat store")
	}
	if err := os.Rename(name, s.path); err != nil {
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "replace %s", s.path)
	}
	return nil
}

func key(chatID int64) string { return strconv.FormatInt(chatID, 10) }
