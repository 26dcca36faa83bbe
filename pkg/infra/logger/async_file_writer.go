package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const flushInterval = 2 * time.Second

// AsyncFileWriter queues log lines and writes them from a single goroutine.
// Lines are dropped when the queue is full so logging never blocks a request.
type AsyncFileWriter struct {
	writer    *bufio.Writer
	file      *os.File
	mu        sync.Mutex
	logChan   chan []byte
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	aw := &AsyncFileWriter{
		writer:  bufio.NewWriterSize(file, bufferSize),
		file:    file,
		logChan: make(chan []byte, 1000),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go aw.processLogs()
	return aw, nil
}

func (aw *AsyncFileWriter) Write(p []byte) (int, error) {
	select {
	case <-aw.done:
		return 0, os.ErrClosed
	default:
	}
	select {
	case aw.logChan <- append([]byte(nil), p...):
	default:
	}
	return len(p), nil
}

func (aw *AsyncFileWriter) processLogs() {
	defer close(aw.stopped)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case line := <-aw.logChan:
			aw.write(line)
		case <-ticker.C:
			aw.flush()
		case <-aw.done:
			// drain what is already queued
			for {
				select {
				case line := <-aw.logChan:
					aw.write(line)
				default:
					aw.flush()
					return
				}
			}
		}
	}
}

func (aw *AsyncFileWriter) write(line []byte) {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	if _, err := aw.writer.Write(line); err != nil {
		fmt.Fprintln(os.Stderr, "error writing log data to file:", err)
	}
}

func (aw *AsyncFileWriter) flush() {
	aw.mu.Lock()
	_ = aw.writer.Flush()
	aw.mu.Unlock()
}

// Close drains the queue, flushes and closes the file. It is safe to call twice.
func (aw *AsyncFileWriter) Close() error {
	var err error
	aw.closeOnce.Do(func() {
		close(aw.done)
		<-aw.stopped
		err = aw.file.Close()
	})
	return err
}
