// Package sink provides destinations for the lines produced by a child
// process. Every implementation is safe for concurrent use: stdout and
// stderr are drained by different goroutines writing to the same sink.
package sink

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vidtree/pybox/internal/model"
)

// Sink receives output lines one at a time, without the trailing newline.
type Sink interface {
	WriteLine(line string)
}

// Func adapts a function into a Sink. The function must be safe for
// concurrent use.
type Func func(line string)

// WriteLine satisfies Sink.
func (f Func) WriteLine(line string) { f(line) }

// Discard drops every line.
var Discard Sink = Func(func(string) {})

// Buffer aggregates lines in arrival order. Subscribers get snapshots of the
// aggregate text, never the internal state.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	text  strings.Builder
	subs  map[int]chan string
	subID int
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{subs: map[int]chan string{}}
}

// WriteLine appends line to the aggregate and publishes a snapshot.
func (b *Buffer) WriteLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	b.text.WriteString(line)
	b.text.WriteByte('\n')

	snapshot := b.text.String()
	for _, ch := range b.subs {
		publish(ch, snapshot)
	}
}

// publish replaces any unread snapshot on ch with the latest one. The channel
// has a single slot so slow readers never block writers.
func publish(ch chan string, snapshot string) {
	select {
	case ch <- snapshot:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- snapshot:
	default:
	}
}

// Subscribe returns a channel receiving the aggregate text after each new
// line, starting with the current one. Intermediate snapshots may be skipped
// but the latest is always delivered. The returned func unsubscribes and
// closes the channel.
func (b *Buffer) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = map[int]chan string{}
	}

	id := b.subID
	b.subID++
	ch := make(chan string, 1)
	b.subs[id] = ch
	if b.text.Len() > 0 {
		ch <- b.text.String()
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

// Lines returns a copy of the received lines.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return lines
}

// String returns the aggregate text, one line per received line.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text.String()
}

// Len returns the number of received lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// WriterSink writes each line followed by a newline to an io.Writer.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterSink returns a sink writing to out.
func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

// WriteLine satisfies Sink. Write errors are dropped.
func (w *WriterSink) WriteLine(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, line)
}

type multi []Sink

// Multi fans every line out to all sinks, in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) WriteLine(line string) {
	for _, s := range m {
		s.WriteLine(line)
	}
}

// Counter counts the lines passing through to the wrapped sink.
type Counter struct {
	next  Sink
	count atomic.Int64
}

// NewCounter wraps next.
func NewCounter(next Sink) *Counter {
	if next == nil {
		next = Discard
	}
	return &Counter{next: next}
}

// WriteLine satisfies Sink.
func (c *Counter) WriteLine(line string) {
	c.count.Add(1)
	c.next.WriteLine(line)
}

// Count returns the number of lines written so far.
func (c *Counter) Count() int {
	return int(c.count.Load())
}

// WriteError renders err as human readable lines on s. Config validation
// errors get one line per offending field.
func WriteError(s Sink, err error) {
	if err == nil {
		return
	}

	s.WriteLine("Error: " + err.Error())

	var verr *model.ConfigValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.MissingFields {
			s.WriteLine("  missing field: " + f)
		}
		for _, f := range verr.InvalidFields {
			s.WriteLine("  invalid field: " + f)
		}
	}
}
