package logger

// Used for storing the log messages in memory.
// Useful for verifying the log messages in unit tests.

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type MemoryLogHook struct {
	messagesLock sync.Mutex
	messages     []MemoryLogMessage
}

type MemoryLogMessage struct {
	Message string
	Level   logrus.Level
	Fields  logrus.Fields
}

func NewMemoryLogHook() *MemoryLogHook {
	return &MemoryLogHook{}
}

func (h *MemoryLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *MemoryLogHook) Fire(entry *logrus.Entry) error {
	data := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		data[k] = v
	}

	h.messagesLock.Lock()
	defer h.messagesLock.Unlock()
	h.messages = append(h.messages, MemoryLogMessage{
		Message: entry.Message,
		Level:   entry.Level,
		Fields:  data,
	})
	return nil
}

// ConsumeMessages returns the captured messages and clears the buffer.
func (h *MemoryLogHook) ConsumeMessages() []MemoryLogMessage {
	h.messagesLock.Lock()
	defer h.messagesLock.Unlock()

	messages := h.messages
	h.messages = nil
	return messages
}

// NewMemoryLogger returns a discarding logger whose entries are captured
// by the returned hook.
func NewMemoryLogger(level string) (Logger, *MemoryLogHook, error) {
	hook := NewMemoryLogHook()
	l, err := New(Options{Level: level, Output: io.Discard, Hooks: []logrus.Hook{hook}})
	if err != nil {
		return nil, nil, err
	}
	return l, hook, nil
}
