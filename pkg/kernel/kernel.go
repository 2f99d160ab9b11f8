// Package kernel assembles the shared areas and communication processes
// described by a configuration and runs them.
package kernel

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/titan.go/pkg/framework"
	"github.com/robotalks/titan.go/pkg/config"
	"github.com/robotalks/titan.go/pkg/driver/loopback"
	"github.com/robotalks/titan.go/pkg/driver/mqtt"
	"github.com/robotalks/titan.go/pkg/driver/serial"
	"github.com/robotalks/titan.go/pkg/driver/stream"
	"github.com/robotalks/titan.go/pkg/driver/websocket"
	"github.com/robotalks/titan.go/pkg/l0/comm"
	"github.com/robotalks/titan.go/pkg/l0/msgs"
	"github.com/robotalks/titan.go/pkg/l0/shm"
	"github.com/robotalks/titan.go/pkg/metrics"
)

// Kernel owns the shared areas and the processes.
type Kernel struct {
	Config  *config.Config
	SHM     *shm.Manager
	Metrics *metrics.Collector
	// ClientID prefixes MQTT client ids.
	ClientID string

	processes []*process
	loopbacks map[string]*loopback.Endpoint
}

type process struct {
	conf *config.Process
	proc *comm.Process
	// transport is pre-opened for loopback processes.
	transport comm.Transport
}

// New creates a Kernel for conf.
func New(conf *config.Config) *Kernel {
	return &Kernel{
		Config:    conf,
		SHM:       shm.NewManager(),
		Metrics:   metrics.NewCollector(),
		loopbacks: make(map[string]*loopback.Endpoint),
	}
}

// Setup registers the areas and creates the processes. The request and
// schedule areas of a process are registered with their natural size
// unless declared explicitly.
func (k *Kernel) Setup() error {
	for i := range k.Config.Areas {
		a := &k.Config.Areas[i]
		if err := k.SHM.Register(a.ResolvedIndex(), uint16(a.Capacity), a.ResolvedAccess()); err != nil {
			return err
		}
	}
	for i := range k.Config.Processes {
		pc := &k.Config.Processes[i]
		single, continuous := pc.ResolvedAreas()
		if err := k.ensureArea(single, msgs.TransmitRequestSize); err != nil {
			return fmt.Errorf("process %s: %w", pc.Name, err)
		}
		if err := k.ensureArea(continuous, msgs.ScheduleSize); err != nil {
			return fmt.Errorf("process %s: %w", pc.Name, err)
		}
		p := &process{conf: pc, proc: comm.NewProcess(pc.Name, k.SHM)}
		p.proc.PollInterval = pc.PollInterval.Duration
		p.proc.Observer = k.Metrics.ForProcess(pc.Name)
		if err := p.proc.Configure(k.Config.Address); err != nil {
			return fmt.Errorf("process %s: %w", pc.Name, err)
		}
		if pc.Transport == config.TransportLoopback {
			device, peer := loopback.Pipe()
			device.ReadTimeout = pc.ReadTimeout.Duration
			device.Size = pc.BufferSize
			peer.Size = pc.BufferSize
			p.transport = device
			k.loopbacks[pc.Name] = peer
		}
		k.processes = append(k.processes, p)
	}
	return nil
}

func (k *Kernel) ensureArea(index uint8, size int) error {
	if k.SHM.IsRegistered(index) {
		a, err := k.SHM.Area(index)
		if err != nil {
			return err
		}
		if !a.Access().CanRead() {
			return fmt.Errorf("area %d: %s: %w", index, a.Access(), comm.ErrUnreadableArea)
		}
		if a.Capacity() < size {
			return fmt.Errorf("area %d: capacity %d less than %d", index, a.Capacity(), size)
		}
		return nil
	}
	return k.SHM.Register(index, uint16(size), shm.ReadWrite)
}

// Peer returns the peer end of a loopback process.
func (k *Kernel) Peer(name string) (*loopback.Endpoint, bool) {
	ep, ok := k.loopbacks[name]
	return ep, ok
}

// Process returns the named process.
func (k *Kernel) Process(name string) (*comm.Process, bool) {
	for _, p := range k.processes {
		if p.conf.Name == name {
			return p.proc, true
		}
	}
	return nil, false
}

// Runnables returns one task per process.
func (k *Kernel) Runnables() []fx.Runnable {
	runnables := make([]fx.Runnable, 0, len(k.processes))
	for _, p := range k.processes {
		runnables = append(runnables, fx.NamedRun(p.conf.Name, fx.RunnableFunc(k.runner(p))))
	}
	return runnables
}

// Run runs all processes until ctx is done. A process whose transport
// can't be opened stops alone.
func (k *Kernel) Run(ctx context.Context) error {
	return fx.NewRunnerWith(ctx).Go(k.Runnables()...).Wait()
}

func (k *Kernel) runner(p *process) func(context.Context) error {
	return func(ctx context.Context) error {
		t := p.transport
		if t == nil {
			var err error
			if t, err = k.open(ctx, p.conf); err != nil {
				glog.Errorf("process %s: open %s %s: %v", p.conf.Name, p.conf.Transport, p.conf.URL, err)
				return err
			}
		}
		single, continuous := p.conf.ResolvedAreas()
		if err := p.proc.Install(t, single, continuous); err != nil {
			return err
		}
		glog.Infof("process %s: %s transport installed", p.conf.Name, p.conf.Transport)
		if closer, ok := t.(io.Closer); ok {
			return fx.RunWithContextCloser(ctx, closer, func() error {
				return p.proc.Run(ctx)
			})
		}
		return p.proc.Run(ctx)
	}
}

func (k *Kernel) open(ctx context.Context, pc *config.Process) (comm.Transport, error) {
	switch pc.Transport {
	case config.TransportSerial:
		return serial.Open(serial.Config{
			Port:        pc.URL,
			BaudRate:    pc.Baud,
			ReadTimeout: pc.ReadTimeout.Duration,
			BufferSize:  pc.BufferSize,
		})
	case config.TransportTCP:
		return stream.Dial(ctx, pc.URL, stream.Config{
			ReadTimeout: pc.ReadTimeout.Duration,
			BufferSize:  pc.BufferSize,
			Framed:      pc.Framed,
		})
	case config.TransportWebsocket:
		t, err := websocket.Dial(pc.URL)
		if err != nil {
			return nil, err
		}
		t.ReadTimeout = pc.ReadTimeout.Duration
		return t, nil
	case config.TransportMQTT:
		clientID := pc.Name
		if k.ClientID != "" {
			clientID = k.ClientID + "-" + pc.Name
		}
		t, err := mqtt.Dial(pc.URL, clientID, pc.Name, false)
		if err != nil {
			return nil, err
		}
		t.ReadTimeout = pc.ReadTimeout.Duration
		return t, nil
	}
	return nil, fmt.Errorf("transport %q can't be opened", pc.Transport)
}
