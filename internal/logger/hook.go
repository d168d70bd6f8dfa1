package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook là một hook để ghi log bất đồng bộ, tránh blocking request handling.
// Hook buffer log entries và ghi chúng vào các writers trong một goroutine riêng.
type AsyncHook struct {
	writers []io.Writer // Danh sách các writers (file, stdout, ...)
	entries chan *logrus.Entry
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewAsyncHookWithWriters tạo một async hook mới với nhiều writers.
// bufferSize: kích thước buffer cho log entries (<=0 → 1000).
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers: writers,
		entries: make(chan *logrus.Entry, bufferSize),
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire được gọi mỗi khi có log entry mới.
// Không block: nếu buffer đầy, entry bị drop (log không được phép kéo chậm request).
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil
	}

	select {
	case h.entries <- entry:
	default:
		// Buffer đầy — drop entry, báo ra stderr để biết đang mất log
		fmt.Fprintf(os.Stderr, "logger: async buffer full, dropping entry\n")
	}
	return nil
}

// processEntries chạy trong goroutine riêng, serialize và ghi từng entry vào tất cả writers
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()
	for entry := range h.entries {
		line, err := entry.Logger.Formatter.Format(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: format entry failed: %v\n", err)
			continue
		}
		for _, w := range h.writers {
			if _, err := w.Write(line); err != nil {
				fmt.Fprintf(os.Stderr, "logger: write entry failed: %v\n", err)
			}
		}
	}
}

// Close đóng hook, chờ goroutine ghi hết các entries còn trong buffer
func (h *AsyncHook) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
}
