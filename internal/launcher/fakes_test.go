package launcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"git.home.luguber.info/inful/devlaunch/internal/metrics"
	"git.home.luguber.info/inful/devlaunch/internal/process"
)

// behavior runs when a fake process starts.
type behavior func(p *fakeProcess)

func exitWith(code int) behavior {
	return func(p *fakeProcess) { p.exit(process.Exit{Code: code}) }
}

// runUntilSignaled models a server that exits with exitCode on any signal.
func runUntilSignaled(exitCode int) behavior {
	return func(p *fakeProcess) {
		p.onSignal = func(os.Signal) { p.exit(process.Exit{Code: exitCode}) }
	}
}

// ignoreSignals models a server that only dies when killed.
func ignoreSignals() behavior {
	return func(p *fakeProcess) { p.onSignal = func(os.Signal) {} }
}

type fakeProcess struct {
	spec     process.Spec
	pid      int
	exitCh   chan process.Exit
	once     sync.Once
	onSignal func(os.Signal)

	mu      sync.Mutex
	signals []os.Signal
	killed  bool
}

func (p *fakeProcess) exit(e process.Exit) {
	p.once.Do(func() { p.exitCh <- e })
}

func (p *fakeProcess) PID() int { return p.pid }

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	fn := p.onSignal
	p.mu.Unlock()
	if fn != nil {
		fn(sig)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.exit(process.Exit{Code: 137, Signal: "killed"})
	return nil
}

func (p *fakeProcess) Wait() (process.Exit, error) {
	return <-p.exitCh, nil
}

func (p *fakeProcess) receivedSignals() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal(nil), p.signals...)
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// fakeRunner dispatches on the command name.
type fakeRunner struct {
	behaviors map[string]behavior
	startErrs map[string]error

	mu      sync.Mutex
	started []*fakeProcess
	// running counts live children; maxRunning records the peak.
	running    int
	maxRunning int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{behaviors: map[string]behavior{}, startErrs: map[string]error{}}
}

func (r *fakeRunner) Start(_ context.Context, spec process.Spec) (process.Process, error) {
	if err := r.startErrs[spec.Name]; err != nil {
		return nil, err
	}
	r.mu.Lock()
	p := &fakeProcess{spec: spec, pid: 1000 + len(r.started), exitCh: make(chan process.Exit, 1)}
	r.started = append(r.started, p)
	r.running++
	if r.running > r.maxRunning {
		r.maxRunning = r.running
	}
	r.mu.Unlock()

	if b, ok := r.behaviors[spec.Name]; ok {
		b(p)
	}
	return &countingProcess{fakeProcess: p, runner: r}, nil
}

func (r *fakeRunner) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.started))
	for _, p := range r.started {
		names = append(names, p.spec.Name)
	}
	return names
}

func (r *fakeRunner) process(name string) *fakeProcess {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.started {
		if p.spec.Name == name {
			return p
		}
	}
	return nil
}

// countingProcess decrements the runner's live count once Wait returns.
type countingProcess struct {
	*fakeProcess
	runner *fakeRunner
}

func (c *countingProcess) Wait() (process.Exit, error) {
	e, err := c.fakeProcess.Wait()
	c.runner.mu.Lock()
	c.runner.running--
	c.runner.mu.Unlock()
	return e, err
}

// fakeSignals hands the subscribed channel to the test.
type fakeSignals struct {
	mu       sync.Mutex
	ch       chan<- os.Signal
	ready    chan struct{}
	stopped  bool
	notified int
}

func newFakeSignals() *fakeSignals {
	return &fakeSignals{ready: make(chan struct{})}
}

func (s *fakeSignals) Notify(c chan<- os.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = c
	s.notified++
	close(s.ready)
}

func (s *fakeSignals) Stop(chan<- os.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeSignals) send(sig os.Signal) error {
	select {
	case <-s.ready:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("signal handler never registered")
	}
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	ch <- sig
	return nil
}

func (s *fakeSignals) subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notified
}

// fakeRecorder counts results per stage.
type fakeRecorder struct {
	mu        sync.Mutex
	results   map[string][]metrics.ResultLabel
	exitCodes map[string]int
	forwarded []string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{results: map[string][]metrics.ResultLabel{}, exitCodes: map[string]int{}}
}

func (f *fakeRecorder) ObserveStageDuration(string, time.Duration) {}

func (f *fakeRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[stage] = append(f.results[stage], result)
}

func (f *fakeRecorder) SetChildExitCode(stage string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exitCodes[stage] = code
}

func (f *fakeRecorder) IncSignalForwarded(signal string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwarded = append(f.forwarded, signal)
}
