package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/logplay/pkg/config"
	"github.com/ccollicutt/logplay/pkg/logging"
	"github.com/ccollicutt/logplay/pkg/parser"
)

// Position is a snapshot of where the replay loop is.
type Position struct {
	Cursor int    // index into Files()
	File   string // file being read
	Line   int    // lines read from File so far
}

// Player replays the log files of one directory.
type Player struct {
	cfg      config.PlayerConfig
	interval time.Duration
	logger   *zap.SugaredLogger
	metrics  *Metrics

	deltaBuffer  int
	statusBuffer int
	deltas       chan parser.Delta
	status       chan Status

	playing atomic.Bool
	resume  chan struct{}

	mu    sync.RWMutex
	state State
	err   error
	files []string
	pos   Position

	// lastEmit is only touched by the loop goroutine.
	lastEmit time.Time

	// sendMu guards the channels against being closed while a publish is in flight.
	sendMu sync.RWMutex
	closed bool

	// Lifecycle statuses waiting for the dispatcher.
	pendingMu  sync.Mutex
	pending    []Status
	wake       chan struct{}
	dispatched chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Player, publishes StatusInitialising and starts scanning in the background.
// Playback is stopped until Start is called.
func New(cfg config.PlayerConfig, opts ...Option) *Player {
	cfg.RateHz = config.NormalizeRate(cfg.RateHz)
	if cfg.OnStop == "" {
		cfg.OnStop = config.DefaultStopPolicy
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		cfg:          cfg,
		interval:     config.PacingInterval(cfg.RateHz),
		logger:       logging.Nop(),
		deltaBuffer:  DefaultDeltaBuffer,
		statusBuffer: DefaultStatusBuffer,
		resume:       make(chan struct{}, 1),
		wake:         make(chan struct{}, 1),
		dispatched:   make(chan struct{}),
		state:        StateInitialising,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.deltas = make(chan parser.Delta, p.deltaBuffer)
	p.status = make(chan Status, p.statusBuffer)
	p.lastEmit = time.Now()

	p.logger.Debugw("player initialised",
		"directory", cfg.Directory,
		"rate_hz", cfg.RateHz,
		"interval", p.interval,
		"on_stop", cfg.OnStop)

	go p.dispatch()
	p.publishStatus(Status{Kind: StatusInitialising})

	go p.run()
	return p
}

// Deltas returns the channel decoded deltas are published on. It is closed by Close.
func (p *Player) Deltas() <-chan parser.Delta {
	return p.deltas
}

// Status returns the status channel. It is closed by Close.
// Lifecycle statuses are delivered in order unless more than MaxPendingStatus pile up
// unread; progress statuses are dropped when the buffer is full.
func (p *Player) Status() <-chan Status {
	return p.status
}

// Interval returns the pacing interval.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// RateHz returns the normalized rate.
func (p *Player) RateHz() float64 {
	return p.cfg.RateHz
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Err returns the terminal startup error, if any.
func (p *Player) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Files returns the scanned log files. Empty until scanning has finished.
func (p *Player) Files() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.files...)
}

// Position returns where the replay loop currently is.
func (p *Player) Position() Position {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

// Playing reports whether deltas are being emitted.
func (p *Player) Playing() bool {
	return p.playing.Load()
}

// Start enables emission. It does not rescan or reset the position.
func (p *Player) Start() {
	p.playing.Store(true)
	select {
	case p.resume <- struct{}{}:
	default:
	}
}

// Stop disables emission and publishes StatusStopped, on every call. It never blocks.
// With the pause policy the read loop also waits until Start.
func (p *Player) Stop() {
	p.playing.Store(false)
	p.publishStatus(Status{Kind: StatusStopped})
}

// Close stops the read loop, waits for it to exit and closes both channels.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		<-p.done
		<-p.dispatched

		p.sendMu.Lock()
		p.closed = true
		close(p.deltas)
		close(p.status)
		p.sendMu.Unlock()

		p.mu.Lock()
		if p.state != StateErrored {
			p.state = StateClosed
		}
		p.mu.Unlock()
	})
	return nil
}

func (p *Player) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.Terminal() {
		p.state = s
	}
}

// fail moves the player into the terminal errored state and reports it once.
func (p *Player) fail(err error) {
	p.mu.Lock()
	if p.state.Terminal() {
		p.mu.Unlock()
		return
	}
	p.state = StateErrored
	p.err = err
	p.mu.Unlock()

	p.logger.Errorw("replay halted", "directory", p.cfg.Directory, "error", err)
	p.publishStatus(Status{Kind: statusForError(err)})
}

func (p *Player) run() {
	defer close(p.done)

	if err := p.startup(); err != nil {
		p.fail(err)
		return
	}
	p.setState(StatePlaying)
	p.replay()
}

// startup checks directory access and builds the file set.
func (p *Player) startup() error {
	p.setState(StateScanning)
	dir := p.cfg.Directory

	if err := checkAccess(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrNoAccess, err)
	}

	files, err := parser.FindLogFiles(dir, parser.LogFileMarker)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScan, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in path: %s", ErrNoLogFiles, dir)
	}

	p.mu.Lock()
	p.files = files
	p.mu.Unlock()

	p.logger.Infow("found log files", "directory", dir, "count", len(files))
	return nil
}

func checkAccess(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.Open(dir) // #nosec G304 -- configured log directory
	if err != nil {
		return err
	}
	return f.Close()
}

// replay reads the file set in order until the player is closed or fails.
func (p *Player) replay() {
	files := p.Files()
	cursor := 0
	unreadable := 0
	lines := 0 // read during the current pass over the file set

	for {
		if p.ctx.Err() != nil {
			return
		}
		if cursor == len(files) {
			cursor = 0
			if lines == 0 {
				// Every file was empty or unreadable; wait instead of spinning.
				if err := p.sleep(p.interval); err != nil {
					return
				}
			}
			lines = 0
		}

		n, err := p.playFile(cursor, files[cursor])
		lines += n
		switch {
		case err == nil:
			unreadable = 0
			p.metrics.fileCompleted()
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, errOpen):
			unreadable++
			p.logger.Warnw("skipping unreadable log file", "file", files[cursor], "error", err)
			if unreadable >= len(files) {
				p.fail(fmt.Errorf("%w: no log file could be opened", ErrScan))
				return
			}
		default:
			unreadable = 0
			p.logger.Warnw("abandoning log file", "file", files[cursor], "error", err)
		}

		cursor++
	}
}

var errOpen = errors.New("open failed")

// playFile replays one file from the top and returns how many lines it read.
func (p *Player) playFile(cursor int, path string) (int, error) {
	reader, err := parser.OpenLineReader(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errOpen, err)
	}
	defer reader.Close()

	p.mu.Lock()
	p.pos = Position{Cursor: cursor, File: reader.Path()}
	p.mu.Unlock()
	p.metrics.setCursor(cursor)

	p.logger.Debugw("reading log file", "file", reader.Path(), "index", cursor+1, "of", len(p.files))

	read := 0
	for {
		line, err := reader.Next(p.ctx)
		if err == io.EOF {
			return read, nil
		}
		if err != nil {
			return read, err
		}
		read++

		p.mu.Lock()
		p.pos.Line = line.LineNum
		p.mu.Unlock()
		p.metrics.lineRead()

		if err := p.pace(); err != nil {
			return read, err
		}
		if err := p.awaitPlaying(); err != nil {
			return read, err
		}

		delta, err := parser.Decode(line.Content)
		if err != nil {
			p.metrics.decodeError()
			p.logger.Debugw("skipping line", "file", path, "line", line.LineNum, "error", err)
			continue
		}

		if err := p.emit(delta, path, line.LineNum); err != nil {
			return read, err
		}
	}
}

// awaitPlaying blocks while stopped under the pause policy.
func (p *Player) awaitPlaying() error {
	if p.cfg.OnStop != config.StopPolicyPause {
		return nil
	}
	for !p.playing.Load() {
		select {
		case <-p.resume:
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	}
	return nil
}

// pace waits out whatever is left of the interval since the last emission.
func (p *Player) pace() error {
	elapsed := time.Since(p.lastEmit)
	if elapsed > p.interval {
		return nil
	}
	return p.sleep(p.interval - elapsed)
}

// sleep waits for d or until the player is closed.
func (p *Player) sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *Player) emit(delta parser.Delta, path string, count int) error {
	if !p.playing.Load() || p.State() == StateErrored {
		p.metrics.suppressed()
		// Suppressed lines still consume a pacing interval.
		p.lastEmit = time.Now()
		return nil
	}

	now := time.Now()
	var rate float64
	if elapsed := now.Sub(p.lastEmit); elapsed > 0 {
		rate = float64(time.Second) / float64(elapsed)
	}
	p.lastEmit = now

	if err := p.publishDelta(delta); err != nil {
		return err
	}
	p.metrics.emitted(rate)

	p.publishStatus(Status{
		Kind:   StatusProgress,
		File:   path,
		Count:  count,
		RateHz: rate,
	})
	return nil
}

func (p *Player) publishDelta(delta parser.Delta) error {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed {
		return context.Canceled
	}

	select {
	case p.deltas <- delta:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// publishStatus never blocks. Progress statuses are dropped when the buffer is full;
// lifecycle statuses are queued for the dispatcher.
func (p *Player) publishStatus(s Status) {
	if !s.IsLifecycle() {
		p.sendMu.RLock()
		defer p.sendMu.RUnlock()
		if p.closed {
			return
		}
		select {
		case p.status <- s:
		default:
			p.metrics.statusDropped()
		}
		return
	}

	p.pendingMu.Lock()
	if len(p.pending) >= MaxPendingStatus {
		p.pendingMu.Unlock()
		p.metrics.statusDropped()
		p.logger.Warnw("status dropped, status channel is not being read", "status", s.String())
		return
	}
	p.pending = append(p.pending, s)
	p.pendingMu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// dispatch delivers queued lifecycle statuses in order until the player is closed.
func (p *Player) dispatch() {
	defer close(p.dispatched)
	for {
		p.pendingMu.Lock()
		batch := p.pending
		p.pending = nil
		p.pendingMu.Unlock()

		for _, s := range batch {
			if !p.deliver(s) {
				return
			}
		}

		select {
		case <-p.wake:
		case <-p.ctx.Done():
			return
		}
	}
}

// deliver blocks until s is sent or the player is closed.
func (p *Player) deliver(s Status) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.status <- s:
		return true
	case <-p.ctx.Done():
		return false
	}
}
