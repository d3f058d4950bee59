// Package session holds per-visitor dashboard state: the chat log, the last
// processed table and the upload history.
package session

import (
	"sync"
	"time"

	"balance_insight/pkg/core/ratio"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryLimit is how many uploads RecentFiles shows by default.
const HistoryLimit = 5

// ChatMessage is one turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FileRecord is one entry of the upload history.
type FileRecord struct {
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Session is the state of one visitor. Methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	lastSeen time.Time
	messages []ChatMessage
	table    ratio.Table
	source   string
	context  string
	files    []FileRecord
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, lastSeen: now}
}

// Append adds a message to the chat log.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, ChatMessage{Role: role, Content: content})
}

// Messages returns a copy of the chat log.
func (s *Session) Messages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ResetChat clears the chat log. The table and history are kept.
func (s *Session) ResetChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// SetTable stores a processed table, caches its markdown as chat context and
// records name in the upload history. A name already in the history is not
// added again.
func (s *Session) SetTable(name string, t ratio.Table, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.source = name
	s.context = t.Markdown()

	for _, f := range s.files {
		if f.Name == name {
			return
		}
	}
	s.files = append(s.files, FileRecord{Name: name, UploadedAt: now})
}

// Table returns the last processed table and its file name.
func (s *Session) Table() (ratio.Table, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.source, s.table != nil
}

// Context returns the table markdown used as chat context, or nil before the
// first upload.
func (s *Session) Context() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.context == "" {
		return nil
	}
	c := s.context
	return &c
}

// RecentFiles returns up to n of the most recent uploads, newest last.
func (s *Session) RecentFiles(n int) []FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n >= 0 && len(s.files) > n {
		start = len(s.files) - n
	}
	out := make([]FileRecord, len(s.files)-start)
	copy(out, s.files[start:])
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

// SuggestedQuestions are the canned prompts offered next to the chat box.
var SuggestedQuestions = []string{
	"Phân tích chi tiết chỉ số thanh toán hiện hành",
	"So sánh tốc độ tăng trưởng các khoản mục chính",
	"Đánh giá rủi ro tài chính của doanh nghiệp",
	"Đưa ra khuyến nghị cải thiện tình hình tài chính",
	"Giải thích ý nghĩa của các chỉ số đã tính",
}
