package launcher

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalSource subscribes a channel to the launcher's own termination signals.
type SignalSource interface {
	Notify(c chan<- os.Signal)
	Stop(c chan<- os.Signal)
}

type osSignals struct {
	sigs []os.Signal
}

// NewOSSignals relays SIGINT and SIGTERM.
func NewOSSignals() SignalSource {
	return osSignals{sigs: []os.Signal{os.Interrupt, syscall.SIGTERM}}
}

func (s osSignals) Notify(c chan<- os.Signal) { signal.Notify(c, s.sigs...) }
func (s osSignals) Stop(c chan<- os.Signal)   { signal.Stop(c) }
