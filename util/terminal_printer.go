package util

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// TerminalPrinter redraws the latest line of every registered output at a
// fixed frequency.
type TerminalPrinter struct {
	parallelOutputs []*ParallelOutput
	frequency       time.Duration
	doneCh          chan struct{}
	stopOnce        sync.Once

	writer  *uilive.Writer
	writers []io.Writer
}

func NewTerminalPrinter(out io.Writer, frequency time.Duration) *TerminalPrinter {
	writer := uilive.New()
	if out != nil {
		writer.Out = out
	}
	return &TerminalPrinter{
		parallelOutputs: make([]*ParallelOutput, 0),
		frequency:       frequency,
		doneCh:          make(chan struct{}),

		writer:  writer,
		writers: make([]io.Writer, 0),
	}
}

// NewOutput must be called before Start.
func (t *TerminalPrinter) NewOutput() *ParallelOutput {
	out := NewParallelOutput()
	t.parallelOutputs = append(t.parallelOutputs, out)
	t.writers = append(t.writers, t.writer.Newline())
	return out
}

func (p *TerminalPrinter) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-p.doneCh:
				p.print()
				return
			case <-ctx.Done():
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

// Stop prints the final state of every output once more.
func (p *TerminalPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.doneCh)
	})
}

func (p *TerminalPrinter) Print(out string) {
	fmt.Fprintf(p.writer, "%s", out)
	p.writer.Flush()
}

func (p *TerminalPrinter) print() {
	for i, output := range p.parallelOutputs {
		fmt.Fprint(p.writers[i], output.Get()+"\n")
	}
	p.writer.Flush()
}

// ParallelOutput holds the latest line written to it.
type ParallelOutput struct {
	mu        *sync.Mutex
	printable string
}

var _ io.Writer = &ParallelOutput{}

func NewParallelOutput() *ParallelOutput {
	return &ParallelOutput{
		mu:        new(sync.Mutex),
		printable: "",
	}
}

// Set the output string (blocking)
func (p *ParallelOutput) Set(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printable = s
}

// Try to set the output string (non-blocking)
func (p *ParallelOutput) TrySet(s string) bool {
	success := p.mu.TryLock()
	if success {
		defer p.mu.Unlock()
		p.printable = s
		return true
	}
	return false
}

// Write keeps the last non empty line of b. It never blocks on a reader; a
// write that loses the lock is dropped.
func (p *ParallelOutput) Write(b []byte) (int, error) {
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	p.TrySet(lines[len(lines)-1])
	return len(b), nil
}

// Get the output string (blocking)
func (p *ParallelOutput) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printable
}
