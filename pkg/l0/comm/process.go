package comm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	fx "github.com/robotalks/titan.go/pkg/framework"
	"github.com/robotalks/titan.go/pkg/l0/msgs"
	"github.com/robotalks/titan.go/pkg/l0/shm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// Process is the device side state machine over one transport.
type Process struct {
	// Clock is the time source of the schedule, fx.SystemTime if nil.
	Clock fx.TimeSource
	// PollInterval is the pause after a cycle with nothing received.
	PollInterval time.Duration
	// Observer receives events, optional.
	Observer Observer

	name string
	shm  *shm.Manager

	transport      Transport
	singleArea     uint8
	continuousArea uint8
	address        uint16
	configured     bool

	// set when an area turns out unreadable, so it is never polled again
	singleOff     bool
	continuousOff bool

	rx       []byte
	rxLen    int
	tx       []byte
	schedule []scheduledPacket
}

type scheduledPacket struct {
	msgs.ScheduleEntry
	last time.Time
}

// NewProcess creates a Process exchanging data through m.
func NewProcess(name string, m *shm.Manager) *Process {
	return &Process{name: name, shm: m}
}

// Name implements fx.Named.
func (p *Process) Name() string {
	return p.name
}

// Address returns the configured device address.
func (p *Process) Address() uint16 {
	return p.address
}

// Install hands the transport to the process together with the area
// holding one-shot transmit requests and the area holding the schedule.
// Both areas must be readable if already registered. It can only be
// called once.
func (p *Process) Install(t Transport, singleArea, continuousArea uint8) error {
	if t == nil {
		return ErrNoTransport
	}
	if p.transport != nil {
		return ErrAlreadyInstalled
	}
	for _, index := range []uint8{singleArea, continuousArea} {
		if a, err := p.shm.Area(index); err == nil && !a.Access().CanRead() {
			return fmt.Errorf("area %d: %w", index, ErrUnreadableArea)
		}
	}
	p.transport = t
	p.singleArea, p.continuousArea = singleArea, continuousArea
	size := bufferSize(t)
	p.rx, p.tx = make([]byte, size), make([]byte, size)
	return nil
}

// Configure sets the device address. It can only be called once.
func (p *Process) Configure(address uint16) error {
	if address == wire.BroadcastAddress || address == wire.InvalidAddress {
		return ErrInvalidAddress
	}
	if p.configured {
		return ErrAlreadyConfigured
	}
	p.address, p.configured = address, true
	return nil
}

// Run implements fx.Runnable. It returns when ctx is done or the
// transport is closed.
func (p *Process) Run(ctx context.Context) error {
	if p.transport == nil {
		return ErrNoTransport
	}
	if !p.configured {
		return ErrNotConfigured
	}
	glog.Infof("process %s: running as %#04x", p.name, p.address)
	defer glog.Infof("process %s: stopped", p.name)
	state := StateIdle
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		next, err := p.step(state)
		if err != nil {
			glog.Errorf("process %s: %v", p.name, err)
			return err
		}
		if state == StateContinuous && p.PollInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.PollInterval):
			}
		}
		state = next
	}
}

func (p *Process) step(state State) (State, error) {
	switch state {
	case StateIdle:
		return p.idle()
	case StateRead:
		return p.read(), nil
	case StateSingle:
		return p.single(), nil
	case StateContinuous:
		return p.continuous(), nil
	}
	return StateIdle, nil
}

func (p *Process) idle() (State, error) {
	n, err := p.transport.Read(p.rx)
	if err != nil {
		if IsClosed(err) {
			return StateIdle, err
		}
		glog.Warningf("process %s: read: %v", p.name, err)
		n = 0
	}
	p.rxLen = n
	return nextState(n > 0, !p.singleOff && p.shm.IsDirty(p.singleArea)), nil
}

func (p *Process) read() State {
	data := p.rx[:p.rxLen]
	p.rxLen = 0
	if _, ok := isAckOrNak(data); ok {
		glog.V(2).Infof("process %s: RX ack %x", p.name, data)
		return StateIdle
	}
	glog.V(2).Infof("process %s: RX %x", p.name, data)
	pkg, err := wire.Decode(data)
	if err != nil {
		glog.Warningf("process %s: drop frame: %v", p.name, err)
		p.observer().DecodeFailed(err)
		p.acknowledge(err)
		return StateIdle
	}
	p.observer().FrameReceived(pkg.Command())
	if pkg.Address() != p.address && pkg.Address() != wire.BroadcastAddress {
		glog.V(1).Infof("process %s: forwarding candidate for %#04x dropped", p.name, pkg.Address())
		p.observer().Forwarded()
		return StateIdle
	}
	switch cmd := pkg.Command(); {
	case cmd == wire.CommandAck:
		return StateIdle
	case cmd.IsRead():
		err = p.respond(pkg)
	case cmd.IsWrite():
		err = p.store(pkg)
	case cmd.IsResponse():
		glog.V(2).Infof("process %s: unsolicited %s dropped", p.name, pkg)
	default:
		err = wire.ErrInvalidCommand
	}
	if err != nil {
		glog.Warningf("process %s: %s: %v", p.name, pkg, err)
	}
	p.acknowledge(err)
	return StateIdle
}

func (p *Process) respond(req *wire.Package) error {
	data, err := p.shm.ReadAll(req.MemoryArea())
	if err != nil {
		return err
	}
	resp, err := wire.NewPackage(req.UUID(), req.Address(), req.Command().Response(), req.MemoryArea(), data)
	if err != nil {
		return err
	}
	return p.send(resp)
}

func (p *Process) store(req *wire.Package) error {
	return p.shm.Write(req.MemoryArea(), req.Payload())
}

func (p *Process) single() State {
	var req msgs.TransmitRequest
	if err := msgs.Load(p.shm, p.singleArea, &req); err != nil {
		if errors.Is(err, shm.ErrAccessDenied) {
			glog.Errorf("process %s: transmit requests disabled: %v", p.name, err)
			p.singleOff = true
			return StateIdle
		}
		glog.Warningf("process %s: transmit request: %v", p.name, err)
		return StateIdle
	}
	if err := p.transmit(req.Address, req.Area); err != nil {
		glog.Warningf("process %s: transmit area %d to %#04x: %v", p.name, req.Area, req.Address, err)
	}
	return StateIdle
}

func (p *Process) continuous() State {
	if !p.continuousOff && p.shm.IsDirty(p.continuousArea) {
		p.reloadSchedule()
	}
	now := p.now()
	for i := range p.schedule {
		entry := &p.schedule[i]
		if !entry.last.IsZero() && now.Sub(entry.last) <= entry.Interval {
			continue
		}
		if err := p.transmit(entry.Address, entry.Area); err != nil {
			glog.Warningf("process %s: scheduled area %d to %#04x: %v", p.name, entry.Area, entry.Address, err)
		}
		entry.last = now
	}
	return StateIdle
}

func (p *Process) reloadSchedule() {
	var sched msgs.Schedule
	if err := msgs.Load(p.shm, p.continuousArea, &sched); err != nil {
		if errors.Is(err, shm.ErrAccessDenied) {
			glog.Errorf("process %s: schedule disabled: %v", p.name, err)
			p.continuousOff = true
			return
		}
		glog.Warningf("process %s: schedule: %v", p.name, err)
		return
	}
	p.schedule = make([]scheduledPacket, len(sched.Entries))
	for i, entry := range sched.Entries {
		p.schedule[i].ScheduleEntry = entry
	}
	glog.V(1).Infof("process %s: schedule reloaded with %d entries", p.name, len(p.schedule))
}

func (p *Process) transmit(address uint16, area uint8) error {
	data, err := p.shm.ReadAll(area)
	if err != nil {
		return err
	}
	pkg, err := wire.NewPackage(uuid.New().ID(), address, wire.CommandReadResponse, area, data)
	if err != nil {
		return err
	}
	return p.send(pkg)
}

func (p *Process) send(pkg *wire.Package) error {
	n, err := wire.Encode(pkg, p.tx)
	if err != nil {
		return err
	}
	glog.V(2).Infof("process %s: TX %x", p.name, p.tx[:n])
	if err = p.transport.Write(p.tx[:n]); err != nil {
		p.observer().WriteFailed()
		return fmt.Errorf("write: %w", err)
	}
	p.observer().FrameSent(pkg.Command())
	return nil
}

func (p *Process) acknowledge(err error) {
	b := Ack
	if err != nil {
		b = Nak
	}
	if werr := p.transport.Write(b); werr != nil {
		glog.Warningf("process %s: write ack: %v", p.name, werr)
		p.observer().WriteFailed()
		return
	}
	p.observer().Acknowledged(err == nil)
}

func (p *Process) now() time.Time {
	if p.Clock != nil {
		return p.Clock.Time()
	}
	return fx.SystemTime.Time()
}

func (p *Process) observer() Observer {
	if p.Observer != nil {
		return p.Observer
	}
	return nopObserver{}
}
