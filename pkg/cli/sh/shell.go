package sh

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/titan.go/pkg/config"
	"github.com/robotalks/titan.go/pkg/driver/mqtt"
	"github.com/robotalks/titan.go/pkg/driver/serial"
	"github.com/robotalks/titan.go/pkg/driver/stream"
	"github.com/robotalks/titan.go/pkg/driver/websocket"
	"github.com/robotalks/titan.go/pkg/l0/comm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// EnvURL is the default connection URL.
const EnvURL = "TITAN_URL"

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration
	// Target is the device address requests are sent to.
	Target uint16
	// URL is connected by Run when set.
	URL string

	Shell *ishell.Shell
	Conn  *Conn
}

// Conn is a connected client.
type Conn struct {
	Ctx       context.Context
	Cancel    func()
	URL       string
	Transport comm.Transport
	Client    *comm.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	connectURL = os.Getenv(EnvURL)
	target     = "0xffff"
	timeout    = time.Second

	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&TargetCmd,
		&ReadCmd,
		&WriteCmd,
		&StatusCmd,
		&CredentialsCmd,
		&TransmitCmd,
		&ScheduleCmd,
		&ListenCmd,
	}
)

// SetupFlags registers the command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&connectURL, "url", connectURL, "Device URL, serial:///dev/ttyUSB0, tcp://host:port, ws://host/path or mqtt://broker/prefix?device=name.")
	flag.StringVar(&target, "target", target, "Device address.")
	flag.DurationVar(&timeout, "timeout", timeout, "Request timeout.")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     timeout,
		Target:      wire.BroadcastAddress,
		URL:         connectURL,
		Shell:       ishell.New(),
	}
	if addr, err := ParseAddress(target); err == nil {
		s.Target = addr
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// ParseAddress parses a decimal or 0x prefixed hex device address.
func ParseAddress(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(n), nil
}

// ParseBytes parses hex bytes given as one or more arguments, e.g.
// "0507" or "05 07".
func ParseBytes(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.TrimPrefix(strings.ReplaceAll(s, ":", ""), "0x")
	return hex.DecodeString(s)
}

// Dial opens a transport by URL.
func Dial(ctx context.Context, rawURL string) (comm.Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var t comm.Transport
	switch u.Scheme {
	case "serial":
		conf := serial.Config{Port: u.Path}
		if baud := u.Query().Get("baud"); baud != "" {
			if conf.BaudRate, err = strconv.Atoi(baud); err != nil {
				return nil, fmt.Errorf("invalid baud %q", baud)
			}
		}
		if t, err = serial.Open(conf); err != nil {
			return nil, err
		}
	case "tcp":
		conf := stream.Config{Framed: u.Query().Get("framed") == "true"}
		if t, err = stream.Dial(ctx, u.Host, conf); err != nil {
			return nil, err
		}
	case "ws", "wss":
		if t, err = websocket.Dial(rawURL); err != nil {
			return nil, err
		}
	case "mqtt", "ssl":
		device := u.Query().Get("device")
		if device == "" {
			return nil, fmt.Errorf("device query required in %q", rawURL)
		}
		if t, err = mqtt.Dial(rawURL, config.ClientID("titancli"), device, true); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return t, nil
}

// Connect connects to a device.
func (s *Shell) Connect(rawURL string) error {
	conn := &Conn{URL: rawURL}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	t, err := Dial(conn.Ctx, rawURL)
	if err != nil {
		conn.Cancel()
		return err
	}
	conn.Transport, conn.Client = t, comm.NewClient(t)
	s.Disconnect()
	s.Conn = conn
	go conn.Client.Run(conn.Ctx)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", rawURL))
	return nil
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Conn == nil {
		return
	}
	s.Conn.Cancel()
	if closer, ok := s.Conn.Transport.(interface{ Close() error }); ok {
		closer.Close()
	}
	s.Conn = nil
	s.Shell.SetPrompt(unconnectedPrompt)
}

// Request runs fn with a request context.
func (s *Shell) Request(fn func(context.Context, *comm.Client) error) error {
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, s.Timeout)
	defer cancel()
	return fn(ctx, s.Conn.Client)
}

// Print prints v as JSON or with the text formatter.
func (s *Shell) Print(c *ishell.Context, v interface{}, text func() string) {
	if !s.OutputJSON {
		c.Println(text())
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.URL != "" {
		if err := s.Connect(s.URL); err != nil {
			log.Fatalf("connect %q failed: %v", s.URL, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	SetupFlags()
	flag.Parse()
	New().Run(flag.Args()...)
}
