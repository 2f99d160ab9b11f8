package comm

import (
	"bytes"
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// Result is the outcome of a request sent with Do.
type Result struct {
	Err error
	// Response is the ReadResponse frame answering a read.
	Response *wire.Package
}

// Request is a request waiting for its acknowledgement.
type Request struct {
	uuid     uint32
	read     bool
	answered bool
	resultCh chan Result
	next     *Request
}

// UUID returns the uuid of the request frame.
func (r *Request) UUID() uint32 {
	return r.uuid
}

// ResultChan returns the chan to retrieve the result.
func (r *Request) ResultChan() <-chan Result {
	return r.resultCh
}

// Client sends requests to devices over a transport.
//
// Responses are matched by uuid. ACK and NAK carry no uuid and are matched
// to the oldest pending request, as a device handles frames in order.
type Client struct {
	transport Transport
	eventCh   chan *wire.Package

	reqsHead *Request
	reqsTail *Request
	reqsLock sync.Mutex
	buf      []byte
}

// NewClient creates a client over the transport.
func NewClient(t Transport) *Client {
	return &Client{
		transport: t,
		eventCh:   make(chan *wire.Package, 16),
		buf:       make([]byte, bufferSize(t)),
	}
}

// EventChan delivers frames which don't answer a pending request, such as
// scheduled transmissions of a device.
func (c *Client) EventChan() <-chan *wire.Package {
	return c.eventCh
}

// Do sends pkg and returns the pending Request.
func (c *Client) Do(pkg *wire.Package) *Request {
	req := &Request{
		uuid:     pkg.UUID(),
		read:     pkg.Command().IsRead(),
		resultCh: make(chan Result, 1),
	}
	c.reqsLock.Lock()
	defer c.reqsLock.Unlock()
	n, err := wire.Encode(pkg, c.buf)
	if err == nil {
		err = c.transport.Write(c.buf[:n])
	}
	if err != nil {
		req.resultCh <- Result{Err: err}
		return req
	}
	if c.reqsHead == nil {
		c.reqsHead = req
	} else {
		c.reqsTail.next = req
	}
	c.reqsTail = req
	return req
}

// Read reads an area of the device at address.
func (c *Client) Read(ctx context.Context, address uint16, area uint8) ([]byte, error) {
	pkg, err := wire.NewPackage(uuid.New().ID(), address, wire.CommandRead, area, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.wait(ctx, c.Do(pkg))
	if err != nil {
		return nil, err
	}
	return res.Response.Payload(), nil
}

// Write writes data into an area of the device at address.
func (c *Client) Write(ctx context.Context, address uint16, area uint8, data []byte) error {
	pkg, err := wire.NewPackage(uuid.New().ID(), address, wire.CommandWrite, area, data)
	if err != nil {
		return err
	}
	_, err = c.wait(ctx, c.Do(pkg))
	return err
}

func (c *Client) wait(ctx context.Context, req *Request) (Result, error) {
	select {
	case res := <-req.resultCh:
		return res, res.Err
	case <-ctx.Done():
		c.remove(req)
		return Result{}, ctx.Err()
	}
}

// Run receives from the transport until ctx is done or the transport
// is closed.
func (c *Client) Run(ctx context.Context) error {
	buf := make([]byte, bufferSize(c.transport))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := c.transport.Read(buf)
		if err != nil {
			if IsClosed(err) {
				return err
			}
			glog.Warningf("client: read: %v", err)
			continue
		}
		if n > 0 {
			c.handle(buf[:n])
		}
	}
}

// handle processes a received chunk, which may hold a frame followed by
// an acknowledgement.
func (c *Client) handle(data []byte) {
	for len(data) > 0 {
		if ack, ok := isAckOrNak(data[:1]); ok {
			c.acknowledge(ack)
			data = data[1:]
			continue
		}
		pkg, err := wire.Decode(data)
		if err != nil {
			glog.Warningf("client: drop frame: %v", err)
			return
		}
		glog.V(2).Infof("client: RX %s", pkg)
		data = data[bytes.IndexByte(data, wire.StartByte)+pkg.FrameSize():]
		if !pkg.Command().IsResponse() || !c.answer(pkg) {
			select {
			case c.eventCh <- pkg:
			default:
				glog.Warningf("client: event dropped: %s", pkg)
			}
		}
	}
}

func (c *Client) answer(pkg *wire.Package) bool {
	c.reqsLock.Lock()
	defer c.reqsLock.Unlock()
	for req := c.reqsHead; req != nil; req = req.next {
		if req.read && !req.answered && req.uuid == pkg.UUID() {
			req.answered = true
			req.resultCh <- Result{Response: pkg}
			return true
		}
	}
	return false
}

func (c *Client) acknowledge(ack bool) {
	c.reqsLock.Lock()
	req := c.reqsHead
	if req != nil {
		if c.reqsHead = req.next; c.reqsHead == nil {
			c.reqsTail = nil
		}
		req.next = nil
	}
	c.reqsLock.Unlock()
	switch {
	case req == nil:
		glog.V(2).Infof("client: unexpected ack %v", ack)
	case req.answered:
	case !ack:
		req.resultCh <- Result{Err: ErrNak}
	case req.read:
		req.resultCh <- Result{Err: ErrNoReply}
	default:
		req.resultCh <- Result{}
	}
}

func (c *Client) remove(req *Request) {
	c.reqsLock.Lock()
	defer c.reqsLock.Unlock()
	var prev *Request
	for curr := c.reqsHead; curr != nil; prev, curr = curr, curr.next {
		if curr != req {
			continue
		}
		if prev == nil {
			c.reqsHead = curr.next
		} else {
			prev.next = curr.next
		}
		if c.reqsTail == curr {
			c.reqsTail = prev
		}
		curr.next = nil
		return
	}
}
