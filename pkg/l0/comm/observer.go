package comm

import "github.com/robotalks/titan.go/pkg/l0/wire"

// Observer receives process events, typically to update metrics.
type Observer interface {
	FrameReceived(cmd wire.Command)
	FrameSent(cmd wire.Command)
	DecodeFailed(err error)
	Acknowledged(ack bool)
	WriteFailed()
	Forwarded()
}

type nopObserver struct{}

func (nopObserver) FrameReceived(wire.Command) {}
func (nopObserver) FrameSent(wire.Command)     {}
func (nopObserver) DecodeFailed(error)         {}
func (nopObserver) Acknowledged(bool)          {}
func (nopObserver) WriteFailed()               {}
func (nopObserver) Forwarded()                 {}
