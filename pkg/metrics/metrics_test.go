package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/titan.go/pkg/l0/shm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

func TestProcessObserver(t *testing.T) {
	c := NewCollector()
	o := c.ForProcess("uart")
	o.FrameReceived(wire.CommandRead)
	o.FrameReceived(wire.CommandRead)
	o.FrameSent(wire.CommandReadResponse)
	o.DecodeFailed(wire.ErrInvalidCrc)
	o.DecodeFailed(errors.New("other"))
	o.Acknowledged(true)
	o.Acknowledged(false)
	o.WriteFailed()
	o.Forwarded()

	require.Equal(t, 2.0, testutil.ToFloat64(c.framesReceived.WithLabelValues("uart", "Read")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.framesSent.WithLabelValues("uart", "ReadResponse")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.decodeErrors.WithLabelValues("uart", wire.ErrInvalidCrc.Name())))
	require.Equal(t, 1.0, testutil.ToFloat64(c.decodeErrors.WithLabelValues("uart", "other")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.acks.WithLabelValues("uart", "ack")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.acks.WithLabelValues("uart", "nak")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.writeErrors.WithLabelValues("uart")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.forwarded.WithLabelValues("uart")))
}

func TestAreaCollector(t *testing.T) {
	m := shm.NewManager()
	require.NoError(t, m.Register(2, 2, shm.ReadWrite))
	require.NoError(t, m.Register(5, 4, shm.ReadOnly))
	require.NoError(t, m.Write(2, []byte{1}))

	c := NewAreaCollector(m, func(index uint8) string {
		if index == 2 {
			return "connection"
		}
		return "water-level"
	})
	require.Equal(t, 8, testutil.CollectAndCount(c))

	expected := `
# HELP titan_area_dirty 1 if the area holds unread data.
# TYPE titan_area_dirty gauge
titan_area_dirty{access="read-only",area="5",name="water-level"} 0
titan_area_dirty{access="read-write",area="2",name="connection"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "titan_area_dirty"))
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.ForProcess("lora").Forwarded()
	reg := NewRegistry(c)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `titan_process_forwarded_total{process="lora"} 1`)
}
