// Package output streams match rows to a delimited file from a dedicated
// consumer goroutine.
package output

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/wkg-uslp/internal/model"
)

// Header is written at the top of a fresh output file.
var Header = []string{"s", "p", "literal", "o", "score"}

// DefaultBuffer is the channel capacity between producer and consumer.
const DefaultBuffer = 4096

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("writer closed")

// WriterOptions configures a Writer
type WriterOptions struct {
	Comma  rune // field delimiter, tab when zero
	Buffer int  // channel capacity, DefaultBuffer when zero
	Append bool // restart: append to the existing file and skip the header
}

// Writer is the consumer side of the matching pipeline. A single goroutine
// drains the channel and flushes after every row, so a crash loses at most
// the row in flight.
type Writer struct {
	records chan model.Match
	done    chan struct{} // closed when the consumer exits
	closer  io.Closer
	closed  bool
	mu      sync.Mutex // guards closed
	err     error      // first consumer error, readable after done is closed
	written int
}

// Open creates or truncates path (or appends to it when opts.Append is set)
// and starts the consumer.
func Open(path string, opts WriterOptions) (*Writer, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return NewWriter(f, f, opts), nil
}

// NewWriter starts a consumer writing to w. closer, if non-nil, is closed
// once the consumer has drained the channel.
func NewWriter(w io.Writer, closer io.Closer, opts WriterOptions) *Writer {
	if opts.Comma == 0 {
		opts.Comma = '\t'
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}

	wr := &Writer{
		records: make(chan model.Match, opts.Buffer),
		done:    make(chan struct{}),
		closer:  closer,
	}

	cw := csv.NewWriter(w)
	cw.Comma = opts.Comma
	go wr.consume(cw, !opts.Append)
	return wr
}

func (wr *Writer) consume(cw *csv.Writer, header bool) {
	defer close(wr.done)
	defer func() {
		if wr.closer != nil {
			if err := wr.closer.Close(); err != nil && wr.err == nil {
				wr.err = fmt.Errorf("close output: %w", err)
			}
		}
	}()

	if header {
		if err := writeRow(cw, Header); err != nil {
			wr.err = err
			return
		}
	}

	for m := range wr.records {
		if err := writeRow(cw, Row(m)); err != nil {
			wr.err = err
			return
		}
		wr.written++
	}
}

func writeRow(cw *csv.Writer, row []string) error {
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return nil
}

// Row renders a match in output column order
func Row(m model.Match) []string {
	return []string{m.S, m.P, m.Literal, m.O, strconv.FormatFloat(m.Score, 'g', -1, 64)}
}

// Send queues m for writing. It blocks only while the buffer is full and
// fails once the consumer has stopped on an I/O error.
func (wr *Writer) Send(ctx context.Context, m model.Match) error {
	wr.mu.Lock()
	closed := wr.closed
	wr.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case <-wr.done:
		if wr.err != nil {
			return wr.err
		}
		return ErrClosed
	default:
	}

	select {
	case wr.records <- m:
		return nil
	case <-wr.done:
		if wr.err != nil {
			return wr.err
		}
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals end of input, waits until every queued row is written and
// returns the first write error. Only the producer may call Send and Close.
func (wr *Writer) Close() error {
	wr.mu.Lock()
	if !wr.closed {
		wr.closed = true
		close(wr.records)
	}
	wr.mu.Unlock()

	<-wr.done
	return wr.err
}

// Written returns the number of match rows written. Valid after Close.
func (wr *Writer) Written() int {
	<-wr.done
	return wr.written
}
