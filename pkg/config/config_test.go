package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/titan.go/pkg/l0/shm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

func TestLoad(t *testing.T) {
	conf, err := Load("testdata/titan.toml")
	require.NoError(t, err)
	require.Equal(t, uint16(0x1015), conf.Address)
	require.Equal(t, ":9100", conf.MetricsAddr)

	require.Len(t, conf.Areas, 4)
	require.Equal(t, AreaConnection, conf.Areas[0].ResolvedIndex())
	require.Equal(t, shm.ReadWrite, conf.Areas[0].ResolvedAccess())
	require.Equal(t, AreaWaterLevel, conf.Areas[1].ResolvedIndex())
	require.Equal(t, shm.ReadOnly, conf.Areas[1].ResolvedAccess())
	require.Equal(t, shm.ReadWrite, conf.Areas[2].ResolvedAccess())
	require.Equal(t, uint8(12), conf.Areas[3].ResolvedIndex())
	require.Equal(t, shm.WriteOnly, conf.Areas[3].ResolvedAccess())

	require.Len(t, conf.Processes, 2)
	uart := conf.Processes[0]
	require.Equal(t, TransportSerial, uart.Transport)
	require.Equal(t, 115200, uart.Baud)
	require.Equal(t, 50*time.Millisecond, uart.ReadTimeout.Duration)
	require.Equal(t, DefaultPollInterval, uart.PollInterval.Duration)
	require.Equal(t, wire.MaxFrameSize, uart.BufferSize)
	single, continuous := uart.ResolvedAreas()
	require.Equal(t, AreaUARTTx, single)
	require.Equal(t, AreaUARTSchedule, continuous)

	lora := conf.Processes[1]
	require.Equal(t, time.Second, lora.PollInterval.Duration)
	require.Equal(t, DefaultReadTimeout, lora.ReadTimeout.Duration)
	single, continuous = lora.ResolvedAreas()
	require.Equal(t, AreaLoRaTx, single)
	require.Equal(t, AreaLoRaSchedule, continuous)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"missing address", `metrics_addr = ":1"`},
		{"broadcast address", `address = 0xffff`},
		{"invalid address", `address = 0xfffe`},
		{"unknown key", "address = 1\ncolor = 'red'"},
		{"address overflow", `address = 70000`},
		{"unknown area", "address = 1\n[[area]]\nname = 'x'\ncapacity = 1"},
		{"area out of range", "address = 1\n[[area]]\nindex = 32\ncapacity = 1"},
		{"area name mismatch", "address = 1\n[[area]]\nname = 'connection'\nindex = 3\ncapacity = 1"},
		{"area capacity", "address = 1\n[[area]]\nname = 'scratch'\ncapacity = 0"},
		{"area access", "address = 1\n[[area]]\nname = 'scratch'\ncapacity = 1\naccess = 'x'"},
		{"area twice", "address = 1\n[[area]]\nname = 'scratch'\ncapacity = 1\n[[area]]\nindex = 0\ncapacity = 2"},
		{"process transport", "address = 1\n[[process]]\nname = 'p'\ntransport = 'smoke'"},
		{"process url", "address = 1\n[[process]]\nname = 'p'\ntransport = 'tcp'\nsingle_area = '3'\ncontinuous_area = '6'"},
		{"process areas", "address = 1\n[[process]]\nname = 'p'\ntransport = 'loopback'\nsingle_area = '3'\ncontinuous_area = '3'"},
		{"process bad area", "address = 1\n[[process]]\nname = 'p'\ntransport = 'loopback'\nsingle_area = 'nope'\ncontinuous_area = '3'"},
		{"process duration", "address = 1\n[[process]]\nname = 'p'\ntransport = 'loopback'\nread_timeout = 'soon'"},
		{"process twice", "address = 1\n" +
			"[[process]]\nname = 'p'\ntransport = 'loopback'\nsingle_area = '3'\ncontinuous_area = '6'\n" +
			"[[process]]\nname = 'p'\ntransport = 'loopback'\nsingle_area = '4'\ncontinuous_area = '7'"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			require.Error(t, err)
		})
	}
}

func TestAreaNames(t *testing.T) {
	for name, index := range areaNames {
		parsed, err := ParseArea(name)
		require.NoError(t, err)
		require.Equal(t, index, parsed)
		require.Equal(t, name, AreaName(index))
	}
	require.Equal(t, "17", AreaName(17))
	index, err := ParseArea("17")
	require.NoError(t, err)
	require.Equal(t, uint8(17), index)
	_, err = ParseArea("-1")
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	require.Equal(t, 90*time.Second, d.Duration)
	text, err := d.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "1m30s", string(text))
}

func TestClientID(t *testing.T) {
	id := ClientID("fallback")
	require.NotEmpty(t, id)
	require.LessOrEqual(t, len(id), len(appID)+1+12)
}
