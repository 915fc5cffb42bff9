package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerTick = 80 * time.Millisecond

// Spinner animates one line on a terminal while a pipeline stage runs. It
// clears its line and stops drawing when its context ends.
type Spinner struct {
	out  io.Writer
	ctx  context.Context
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	message string
	drawn   int // longest line drawn, for clearing
}

// newSpinner returns a spinner on stderr, so piped stdout stays clean.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, out io.Writer, message string) *Spinner {
	return &Spinner{out: out, ctx: ctx, stop: make(chan struct{}), message: message}
}

func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		tick := time.NewTicker(spinnerTick)
		defer tick.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.stop:
				return
			case <-s.ctx.Done():
				s.clear()
				return
			case <-tick.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleSpinner.Render(string(frame)), StyleDim.Render(s.message))
	s.drawn = max(s.drawn, len(s.message)+2)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.drawn))
	}
}

// SetMessage changes the text from the next frame on.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Later calls do nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		s.clear()
	})
}

// Fail stops the spinner and reports message as an error line.
func (s *Spinner) Fail(message string) {
	s.Stop()
	printError("%s", message)
}
