package sh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/titan.go/pkg/config"
	"github.com/robotalks/titan.go/pkg/driver/loopback"
	"github.com/robotalks/titan.go/pkg/l0/comm"
	"github.com/robotalks/titan.go/pkg/l0/msgs"
	"github.com/robotalks/titan.go/pkg/l0/shm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x1015")
	require.NoError(t, err)
	require.Equal(t, uint16(0x1015), addr)
	addr, err = ParseAddress("16")
	require.NoError(t, err)
	require.Equal(t, uint16(16), addr)
	_, err = ParseAddress("0x10000")
	require.Error(t, err)
	_, err = ParseAddress("dev")
	require.Error(t, err)
}

func TestParseBytes(t *testing.T) {
	data, err := ParseBytes([]string{"0507"})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 7}, data)
	data, err = ParseBytes([]string{"0x05", "07", "aa:bb"})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 7, 0xaa, 0xbb}, data)
	_, err = ParseBytes([]string{"5"})
	require.Error(t, err)
}

func TestParseScheduleEntry(t *testing.T) {
	entry, err := ParseScheduleEntry("0x10:water-level:5s")
	require.NoError(t, err)
	require.Equal(t, msgs.ScheduleEntry{
		Address:  0x10,
		Area:     config.AreaWaterLevel,
		Interval: 5 * time.Second,
	}, entry)

	for _, s := range []string{
		"0x10:water-level",
		"0xfffe:water-level:1s",
		"0x10:unknown:1s",
		"0x10:5:0s",
		"0x10:5:soon",
	} {
		_, err = ParseScheduleEntry(s)
		require.Error(t, err, s)
	}
}

func TestDialRejects(t *testing.T) {
	ctx := context.Background()
	_, err := Dial(ctx, "ftp://host")
	require.Error(t, err)
	_, err = Dial(ctx, "mqtt://localhost:1883/titan")
	require.Error(t, err)
}

func connected(t *testing.T) (*Shell, *shm.Manager) {
	m := shm.NewManager()
	require.NoError(t, m.Register(config.AreaCredentials, 64, shm.ReadWrite))
	require.NoError(t, m.Register(config.AreaConnection, 2, shm.ReadWrite))
	require.NoError(t, m.Register(config.AreaUARTTx, msgs.TransmitRequestSize, shm.ReadWrite))
	require.NoError(t, m.Register(config.AreaUARTSchedule, msgs.ScheduleSize, shm.ReadWrite))
	require.NoError(t, m.Register(config.AreaLoRaSchedule, msgs.ScheduleSize, shm.ReadWrite))

	device, peer := loopback.Pipe()
	p := comm.NewProcess("device", m)
	require.NoError(t, p.Install(device, config.AreaUARTTx, config.AreaUARTSchedule))
	require.NoError(t, p.Configure(0x20))

	ctx, cancel := context.WithCancel(context.Background())
	s := New()
	s.Target = 0x20
	s.Conn = &Conn{
		Ctx:       ctx,
		Cancel:    cancel,
		URL:       "loopback",
		Transport: peer,
		Client:    comm.NewClient(peer),
	}
	go p.Run(ctx)
	go s.Conn.Client.Run(ctx)
	t.Cleanup(s.Disconnect)
	return s, m
}

func TestReadWriteArea(t *testing.T) {
	s, m := connected(t)

	require.NoError(t, writeArea(s, config.AreaConnection, []byte{1, 2}))
	data, err := readArea(s, config.AreaConnection)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, data)
	require.False(t, m.IsDirty(config.AreaConnection))

	var status msgs.ConnectionStatus
	require.NoError(t, loadArea(s, config.AreaConnection, &status))
	require.Equal(t, msgs.ConnectionStatus{APStatus: 1, STAStatus: 2}, status)

	require.ErrorIs(t, writeArea(s, config.AreaConnection, []byte{1, 2, 3}), comm.ErrNak)
}

func TestStoreMessages(t *testing.T) {
	s, m := connected(t)

	cred := &msgs.Credentials{SSID: "home", Password: "secret"}
	require.NoError(t, storeArea(s, config.AreaCredentials, cred))
	var stored msgs.Credentials
	require.NoError(t, msgs.Load(m, config.AreaCredentials, &stored))
	require.Equal(t, *cred, stored)

	sched := &msgs.Schedule{Entries: []msgs.ScheduleEntry{
		{Address: 0x30, Area: config.AreaConnection, Interval: time.Minute},
	}}
	require.NoError(t, storeArea(s, config.AreaLoRaSchedule, sched))
	var loaded msgs.Schedule
	require.NoError(t, loadArea(s, config.AreaLoRaSchedule, &loaded))
	require.Equal(t, sched.Entries, loaded.Entries)
	require.Contains(t, formatSchedule(&loaded), "0x0030 connection every 1m0s")
}

func TestTransmitRequest(t *testing.T) {
	s, m := connected(t)
	require.NoError(t, m.Write(config.AreaConnection, []byte{4, 5}))

	req := &msgs.TransmitRequest{Address: 0x30, Area: config.AreaConnection}
	require.NoError(t, storeArea(s, config.AreaUARTTx, req))

	select {
	case pkg := <-s.Conn.Client.EventChan():
		require.Equal(t, wire.CommandReadResponse, pkg.Command())
		require.Equal(t, uint16(0x30), pkg.Address())
		require.Equal(t, []byte{4, 5}, pkg.Payload())
	case <-time.After(time.Second):
		t.Fatal("no transmission")
	}
}
