package sh

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/titan.go/pkg/config"
	"github.com/robotalks/titan.go/pkg/l0/comm"
	"github.com/robotalks/titan.go/pkg/l0/msgs"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// ConnectCmd connects to a device by URL.
var ConnectCmd = ishell.Cmd{
	Name: "connect",
	Help: "connect URL",
	LongHelp: "Connect to a device by URL:\n" +
		"  serial:///dev/ttyUSB0?baud=115200\n" +
		"  tcp://host:port[?framed=true]\n" +
		"  ws://host/path\n" +
		"  mqtt://broker:1883/prefix?device=name",
	Func: func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(fmt.Errorf("URL expected"))
			return
		}
		if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
			c.Err(err)
		}
	},
}

// DisconnectCmd drops the current connection.
var DisconnectCmd = ishell.Cmd{
	Name: "disconnect",
	Help: "disconnect from the device",
	Func: func(c *ishell.Context) {
		ShellFrom(c).Disconnect()
	},
}

// TargetCmd shows or sets the device address.
var TargetCmd = ishell.Cmd{
	Name: "target",
	Help: "target [ADDRESS]",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) == 0 {
			c.Printf("0x%04x\n", s.Target)
			return
		}
		addr, err := ParseAddress(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		s.Target = addr
	},
}

type areaData struct {
	Area uint8  `json:"area"`
	Name string `json:"name"`
	Data string `json:"data"`
}

// ReadCmd reads an area.
var ReadCmd = ishell.Cmd{
	Name: "read",
	Help: "read AREA",
	Func: MustBeConnected(func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(fmt.Errorf("AREA expected"))
			return
		}
		area, err := config.ParseArea(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		data, err := readArea(ShellFrom(c), area)
		if err != nil {
			c.Err(err)
			return
		}
		v := areaData{Area: area, Name: config.AreaName(area), Data: hex.EncodeToString(data)}
		ShellFrom(c).Print(c, &v, func() string {
			return fmt.Sprintf("%s: %s", v.Name, hex.Dump(data))
		})
	}),
}

// WriteCmd writes hex bytes into an area.
var WriteCmd = ishell.Cmd{
	Name: "write",
	Help: "write AREA HEX...",
	Func: MustBeConnected(func(c *ishell.Context) {
		if len(c.Args) < 2 {
			c.Err(fmt.Errorf("AREA and data expected"))
			return
		}
		area, err := config.ParseArea(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		data, err := ParseBytes(c.Args[1:])
		if err != nil {
			c.Err(err)
			return
		}
		if err = writeArea(ShellFrom(c), area, data); err != nil {
			c.Err(err)
		}
	}),
}

// StatusCmd reads the connection status area.
var StatusCmd = ishell.Cmd{
	Name: "status",
	Help: "status [AREA]",
	Func: MustBeConnected(func(c *ishell.Context) {
		area := config.AreaConnection
		if len(c.Args) > 0 {
			var err error
			if area, err = config.ParseArea(c.Args[0]); err != nil {
				c.Err(err)
				return
			}
		}
		var status msgs.ConnectionStatus
		if err := loadArea(ShellFrom(c), area, &status); err != nil {
			c.Err(err)
			return
		}
		ShellFrom(c).Print(c, &status, func() string {
			return fmt.Sprintf("ap=%d sta=%d", status.APStatus, status.STAStatus)
		})
	}),
}

// CredentialsCmd writes network credentials.
var CredentialsCmd = ishell.Cmd{
	Name: "credentials",
	Help: "credentials SSID [PASSWORD]",
	Func: MustBeConnected(func(c *ishell.Context) {
		if len(c.Args) < 1 || len(c.Args) > 2 {
			c.Err(fmt.Errorf("SSID expected"))
			return
		}
		cred := &msgs.Credentials{SSID: c.Args[0]}
		if len(c.Args) > 1 {
			cred.Password = c.Args[1]
		}
		if err := storeArea(ShellFrom(c), config.AreaCredentials, cred); err != nil {
			c.Err(err)
		}
	}),
}

// TransmitCmd requests a one-shot transmission by the device.
var TransmitCmd = ishell.Cmd{
	Name: "transmit",
	Help: "transmit REQUEST-AREA ADDRESS AREA",
	LongHelp: "Ask the device to send AREA to ADDRESS once, by writing a\n" +
		"transmit request into REQUEST-AREA (e.g. uart-tx).",
	Func: MustBeConnected(func(c *ishell.Context) {
		if len(c.Args) != 3 {
			c.Err(fmt.Errorf("REQUEST-AREA ADDRESS AREA expected"))
			return
		}
		reqArea, err := config.ParseArea(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		req, err := parseDestination(c.Args[1], c.Args[2])
		if err != nil {
			c.Err(err)
			return
		}
		if err = storeArea(ShellFrom(c), reqArea, &msgs.TransmitRequest{Address: req.Address, Area: req.Area}); err != nil {
			c.Err(err)
		}
	}),
}

// ScheduleCmd shows or replaces a periodic transmission schedule.
var ScheduleCmd = ishell.Cmd{
	Name: "schedule",
	Help: "schedule AREA [ADDRESS:AREA:INTERVAL...]",
	LongHelp: "Without entries, read the schedule in AREA.\n" +
		"Otherwise replace it, e.g. schedule uart-schedule 0x10:water-level:5s",
	Func: MustBeConnected(func(c *ishell.Context) {
		if len(c.Args) < 1 {
			c.Err(fmt.Errorf("AREA expected"))
			return
		}
		area, err := config.ParseArea(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		s := ShellFrom(c)
		if len(c.Args) == 1 {
			var sched msgs.Schedule
			if err = loadArea(s, area, &sched); err != nil {
				c.Err(err)
				return
			}
			s.Print(c, &sched, func() string { return formatSchedule(&sched) })
			return
		}
		var sched msgs.Schedule
		for _, arg := range c.Args[1:] {
			entry, err := ParseScheduleEntry(arg)
			if err != nil {
				c.Err(err)
				return
			}
			sched.Entries = append(sched.Entries, entry)
		}
		if err = storeArea(s, area, &sched); err != nil {
			c.Err(err)
		}
	}),
}

// ListenCmd prints frames sent by the device on its own.
var ListenCmd = ishell.Cmd{
	Name: "listen",
	Help: "listen [DURATION], default 10s",
	Func: MustBeConnected(func(c *ishell.Context) {
		s := ShellFrom(c)
		d := 10 * time.Second
		if len(c.Args) > 0 {
			var err error
			if d, err = time.ParseDuration(c.Args[0]); err != nil {
				c.Err(err)
				return
			}
		}
		ctx, cancel := context.WithTimeout(s.Conn.Ctx, d)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case pkg := <-s.Conn.Client.EventChan():
				v := areaData{Area: pkg.MemoryArea(), Name: config.AreaName(pkg.MemoryArea()), Data: hex.EncodeToString(pkg.Payload())}
				s.Print(c, &v, pkg.String)
			}
		}
	}),
}

func readArea(s *Shell, area uint8) (data []byte, err error) {
	err = s.Request(func(ctx context.Context, client *comm.Client) error {
		data, err = client.Read(ctx, s.Target, area)
		return err
	})
	return
}

func writeArea(s *Shell, area uint8, data []byte) error {
	return s.Request(func(ctx context.Context, client *comm.Client) error {
		return client.Write(ctx, s.Target, area, data)
	})
}

func loadArea(s *Shell, area uint8, msg msgs.Serializable) error {
	data, err := readArea(s, area)
	if err != nil {
		return err
	}
	return msg.UnmarshalBinary(data)
}

func storeArea(s *Shell, area uint8, msg msgs.Serializable) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	return writeArea(s, area, data)
}

func parseDestination(addr, area string) (dest msgs.ScheduleEntry, err error) {
	if dest.Address, err = ParseAddress(addr); err != nil {
		return
	}
	if dest.Address == wire.InvalidAddress {
		return dest, fmt.Errorf("invalid address %q", addr)
	}
	dest.Area, err = config.ParseArea(area)
	return
}

// ParseScheduleEntry parses ADDRESS:AREA:INTERVAL.
func ParseScheduleEntry(s string) (msgs.ScheduleEntry, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return msgs.ScheduleEntry{}, fmt.Errorf("ADDRESS:AREA:INTERVAL expected, got %q", s)
	}
	entry, err := parseDestination(parts[0], parts[1])
	if err != nil {
		return entry, err
	}
	if entry.Interval, err = time.ParseDuration(parts[2]); err != nil {
		return entry, err
	}
	if entry.Interval <= 0 {
		return entry, fmt.Errorf("interval must be positive, got %q", parts[2])
	}
	return entry, nil
}

func formatSchedule(sched *msgs.Schedule) string {
	if len(sched.Entries) == 0 {
		return "empty"
	}
	lines := make([]string, 0, len(sched.Entries))
	for i, entry := range sched.Entries {
		lines = append(lines, fmt.Sprintf("%d: 0x%04x %s every %v",
			i, entry.Address, config.AreaName(entry.Area), entry.Interval))
	}
	return strings.Join(lines, "\n")
}
