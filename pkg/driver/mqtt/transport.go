package mqtt

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// Defaults.
const (
	DefaultReadTimeout = 100 * time.Millisecond
	DefaultQueueSize   = 16
)

// Topic suffixes. A device receives on <name>/rx and sends on <name>/tx.
const (
	RxTopicSuffix = "/rx"
	TxTopicSuffix = "/tx"
)

// Transport implements comm.Transport with one message per Write.
type Transport struct {
	Queue       *Queue
	SubTopic    string
	PubTopic    string
	ReadTimeout time.Duration

	packetCh  chan []byte
	sub       *Subscription
	ownsQueue bool
	closeOnce sync.Once
	closedCh  chan struct{}
}

// NewTransport creates the Transport over a connected queue.
func NewTransport(q *Queue) *Transport {
	return &Transport{
		Queue:       q,
		ReadTimeout: DefaultReadTimeout,
		packetCh:    make(chan []byte, DefaultQueueSize),
		closedCh:    make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (t *Transport) WithTopics(sub, pub string) *Transport {
	t.SubTopic, t.PubTopic = sub, pub
	return t
}

// ForDevice sets topics for the device side:
// SubTopic = name/rx
// PubTopic = name/tx
func (t *Transport) ForDevice(name string) *Transport {
	return t.WithTopics(name+RxTopicSuffix, name+TxTopicSuffix)
}

// ForPeer sets topics for the peer side:
// SubTopic = name/tx
// PubTopic = name/rx
func (t *Transport) ForPeer(name string) *Transport {
	return t.WithTopics(name+TxTopicSuffix, name+RxTopicSuffix)
}

// Start subscribes SubTopic.
func (t *Transport) Start() error {
	t.sub = t.Queue.Sub(t.SubTopic, t.handleMsg)
	t.sub.Token.Wait()
	return t.sub.Token.Error()
}

// Dial connects to the broker and starts a transport for the named
// device. peer selects the peer side topics.
func Dial(brokerURL, clientID, name string, peer bool) (*Transport, error) {
	q, err := NewQueueFromURL(brokerURL, clientID)
	if err != nil {
		return nil, err
	}
	token := q.Connect()
	token.Wait()
	if err = token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt %s: %w", brokerURL, err)
	}
	t := NewTransport(q)
	t.ownsQueue = true
	if peer {
		t.ForPeer(name)
	} else {
		t.ForDevice(name)
	}
	if err = t.Start(); err != nil {
		q.Close()
		return nil, err
	}
	return t, nil
}

// Write implements comm.Transport.
func (t *Transport) Write(b []byte) error {
	select {
	case <-t.closedCh:
		return io.ErrClosedPipe
	default:
	}
	token := t.Queue.Pub(t.PubTopic, append([]byte(nil), b...))
	token.Wait()
	return token.Error()
}

// Read implements comm.Transport. A message larger than buf is truncated.
func (t *Transport) Read(buf []byte) (int, error) {
	timeout := t.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	select {
	case pkt := <-t.packetCh:
		return copy(buf, pkt), nil
	case <-t.closedCh:
		return 0, io.EOF
	case <-time.After(timeout):
		return 0, nil
	}
}

// BufferSize implements comm.Transport.
func (t *Transport) BufferSize() int {
	return wire.MaxFrameSize
}

// Close implements io.Closer.
func (t *Transport) Close() (err error) {
	t.closeOnce.Do(func() {
		close(t.closedCh)
		if t.sub != nil {
			err = t.sub.Close()
		}
		if t.ownsQueue {
			t.Queue.Close()
		}
	})
	return
}

func (t *Transport) handleMsg(topic string, payload []byte) {
	select {
	case t.packetCh <- payload:
	default:
		glog.Warningf("mqtt %s: receive queue full, message dropped", topic)
	}
}
