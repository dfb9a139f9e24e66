// Package rpc implements the call-multiplexing Connection that drives a
// single DCE/RPC byte transport: binding, call-id allocation, and
// correlating Request PDUs with their matching Response (or Fault) via
// an outbound pump, an inbound pump, and a correlator.
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mellowdrifter/dcerpc/ndr"
	"github.com/mellowdrifter/dcerpc/pdu"
)

// outboundQueueSize bounds the outbound pump's backlog. SendMessage
// blocks (ctx-aware) once it is full rather than growing it unbounded.
const outboundQueueSize = 64

// inboundQueueSize bounds the correlator's backlog of decoded PDUs
// awaiting dispatch to their suspension.
const inboundQueueSize = 64

type pduResult struct {
	p   pdu.PDU
	err error
}

type suspension struct {
	respCh chan pduResult
}

// terminalReason records why a call id no longer has an outstanding
// suspension, so the correlator can tell a genuine duplicate response
// (protocol violation) apart from a late response for a call the caller
// already cancelled (discarded with a warning, spec.md §5).
type terminalReason int

const (
	terminalCompleted terminalReason = iota
	terminalCancelled
)

// Connection is a long-lived, call-multiplexing wrapper around a
// Transport. It owns call-id allocation, a per-connection referent
// source, and the three cooperative tasks described by the spec this
// core implements: an outbound pump, an inbound pump, and a correlator.
// A Connection must be Acquired before Bind or SendMessage are called,
// and Released exactly once when the caller is done with it.
type Connection struct {
	transport Transport
	referents *ndr.ReferentSource
	logger    *zap.SugaredLogger
	metrics   Metrics

	outboundCh chan pdu.PDU
	inboundCh  chan pdu.PDU

	mu         sync.Mutex
	nextCallID uint32
	pending    map[uint32]*suspension
	// terminal grows by one entry per call for the Connection's whole
	// lifetime; nothing currently evicts old entries. Fine for the
	// short-lived connections this client is built for, but a
	// long-running Connection making many calls would want this bounded
	// (e.g. an LRU keyed on call id) instead of unbounded growth.
	terminal map[uint32]terminalReason

	group        *errgroup.Group
	cancel       context.CancelFunc
	closedCh     chan struct{}
	tornDownCh   chan struct{}
	teardownOnce sync.Once
	teardownErr  error
	released     bool
}

// NewConnection wraps transport. The returned Connection is not yet
// running any of its pumps; call Acquire to start them.
func NewConnection(transport Transport, opts ...Option) *Connection {
	c := &Connection{
		transport:  transport,
		referents:  ndr.NewReferentSource(),
		logger:     zap.NewNop().Sugar(),
		metrics:    noopMetrics{},
		outboundCh: make(chan pdu.PDU, outboundQueueSize),
		inboundCh:  make(chan pdu.PDU, inboundQueueSize),
		nextCallID: 1,
		pending:    make(map[uint32]*suspension),
		terminal:   make(map[uint32]terminalReason),
		closedCh:   make(chan struct{}),
		tornDownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Referents returns the connection's referent-id source, for marshalling
// NDR pointers into stub data belonging to calls on this connection.
func (c *Connection) Referents() *ndr.ReferentSource {
	return c.referents
}

// Acquire starts the outbound pump, inbound pump, and correlator under an
// errgroup.Group scoped to ctx. The first pump to return an error cancels
// the group's context, which in turn causes the other two to stop; a
// watcher goroutine then tears the connection down exactly as an
// explicit Release would, completing every outstanding suspension with
// ErrConnectionClosed (spec.md §9 "Missing teardown completion" — this
// core performs it whether the pumps stopped on their own or Release was
// called).
func (c *Connection) Acquire(ctx context.Context) error {
	gctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(gctx)
	c.group = g
	c.cancel = cancel

	g.Go(func() error { return c.runOutboundPump(gctx) })
	g.Go(func() error { return c.runInboundPump(gctx) })
	g.Go(func() error { return c.runCorrelator(gctx) })

	go c.watchGroup()

	c.logger.Info("connection acquired")
	return nil
}

// watchGroup waits for all three pumps to exit — whether cleanly, via
// ctx cancellation from Release, or because one of them failed — and
// performs teardown exactly once.
func (c *Connection) watchGroup() {
	err := c.group.Wait()
	c.teardownOnce.Do(func() {
		c.teardownErr = err
		c.teardown()
	})
}

// teardown marks the connection released, unblocks every caller waiting
// in SendMessage's select on closedCh, and completes every suspension
// still in c.pending with ErrConnectionClosed.
func (c *Connection) teardown() {
	c.mu.Lock()
	c.released = true
	pending := c.pending
	c.pending = make(map[uint32]*suspension)
	c.mu.Unlock()

	close(c.closedCh)

	for callID, susp := range pending {
		c.logger.Warnw("completing outstanding suspension with connection-closed", "call_id", callID)
		c.metrics.SuspensionsOutstanding(-1)
		susp.respCh <- pduResult{err: ErrConnectionClosed}
	}
	c.logger.Info("connection released")
	close(c.tornDownCh)
}

// Release cancels the three cooperative tasks and blocks until teardown
// has completed every outstanding suspension. Safe to call more than
// once, and safe to call after the pumps have already stopped on their
// own (e.g. following a decode failure).
func (c *Connection) Release() error {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.tornDownCh
	return c.teardownErr
}

// allocateCallID draws the next strictly monotonic call id, starting at
// 1. Exhausting the u32 space is fatal for the connection.
func (c *Connection) allocateCallID() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nextCallID == 0 {
		return 0, ErrExhausted
	}
	id := c.nextCallID
	c.nextCallID++
	return id, nil
}

// Bind sends a Bind PDU carrying contextList and waits for the matching
// BindAck. A Response (or any other unexpected PDU type) arriving in
// reply is a type mismatch, not a bind failure that closes the
// connection — the caller decides what to do next.
func (c *Connection) Bind(ctx context.Context, contextList pdu.ContextList) (*pdu.BindAck, error) {
	b := pdu.NewBind(contextList)
	res, err := c.SendMessage(ctx, b, true)
	if err != nil {
		return nil, err
	}
	ack, ok := res.(*pdu.BindAck)
	if !ok {
		return nil, fmt.Errorf("%w: expected BindAck, got %T", pdu.ErrTypeMismatch, res)
	}
	c.logger.Infow("bind acknowledged", "call_id", ack.CallID())
	return ack, nil
}

// SendMessage is the Connection's single primitive: if assignCallID is
// true it draws the next call id and writes it into p's header, enqueues
// p for the outbound pump, and blocks until the correlator delivers the
// matching response (collapsing the reference design's handle-returning
// signature into one await, per this core's resolution of that anomaly).
//
// A Fault response surfaces as *ErrFault rather than the raw PDU.
func (c *Connection) SendMessage(ctx context.Context, p pdu.PDU, assignCallID bool) (pdu.PDU, error) {
	c.mu.Lock()
	released := c.released
	c.mu.Unlock()
	if released {
		return nil, ErrConnectionClosed
	}

	callID := p.CallID()
	if assignCallID {
		id, err := c.allocateCallID()
		if err != nil {
			return nil, err
		}
		callID = id
		setCallID(p, callID)
	}
	// Captured now: a Response or Fault PDU carries no opnum of its own,
	// so CallCompleted/CallFailed need the originating Request's opnum.
	opnum := opnumOf(p)

	susp := &suspension{respCh: make(chan pduResult, 1)}
	c.mu.Lock()
	c.pending[callID] = susp
	c.mu.Unlock()
	c.metrics.SuspensionsOutstanding(1)

	started := time.Now()
	if err := c.enqueueOutbound(ctx, callID, p); err != nil {
		c.metrics.CallFailed(opnum)
		return nil, err
	}

	select {
	case res := <-susp.respCh:
		return c.finishSendMessage(opnum, res, started)
	case <-ctx.Done():
		return c.cancelSendMessage(ctx, callID, opnum, susp, started)
	case <-c.closedCh:
		c.detach(callID)
		c.metrics.CallFailed(opnum)
		return nil, ErrConnectionClosed
	}
}

// enqueueOutbound hands p to the outbound pump, detaching its
// suspension again if the caller's context is cancelled or the
// connection closes before the pump can accept it.
func (c *Connection) enqueueOutbound(ctx context.Context, callID uint32, p pdu.PDU) error {
	select {
	case c.outboundCh <- p:
		return nil
	case <-ctx.Done():
		c.detach(callID)
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case <-c.closedCh:
		c.detach(callID)
		return ErrConnectionClosed
	}
}

// detach removes callID's suspension from the pending set and marks it
// terminal, without sending on its channel. Used when a call never made
// it onto the wire.
func (c *Connection) detach(callID uint32) {
	c.mu.Lock()
	_, ok := c.pending[callID]
	if ok {
		delete(c.pending, callID)
		c.terminal[callID] = terminalCancelled
	}
	c.mu.Unlock()
	if ok {
		c.metrics.SuspensionsOutstanding(-1)
	}
}

// cancelSendMessage handles ctx cancellation racing against the
// correlator. Whichever side successfully deletes the pending entry owns
// the outcome; the loser reads the result the winner already produced.
func (c *Connection) cancelSendMessage(ctx context.Context, callID uint32, opnum uint16, susp *suspension, started time.Time) (pdu.PDU, error) {
	c.mu.Lock()
	_, stillPending := c.pending[callID]
	if stillPending {
		delete(c.pending, callID)
		c.terminal[callID] = terminalCancelled
	}
	c.mu.Unlock()

	if stillPending {
		c.metrics.SuspensionsOutstanding(-1)
		c.metrics.CallFailed(opnum)
		c.logger.Warnw("call cancelled while outstanding", "call_id", callID)
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	// The correlator already claimed this call id; its result is
	// waiting on the channel (buffered, so this never blocks).
	res := <-susp.respCh
	return c.finishSendMessage(opnum, res, started)
}

func (c *Connection) finishSendMessage(opnum uint16, res pduResult, started time.Time) (pdu.PDU, error) {
	callID := uint32(0)
	if res.p != nil {
		callID = res.p.CallID()
	}
	if res.err != nil {
		if !started.IsZero() {
			c.metrics.CallFailed(opnum)
		}
		return nil, res.err
	}
	if fault, ok := res.p.(*pdu.Fault); ok {
		c.logger.Warnw("call faulted", "call_id", callID, "status", fault.Status)
		if !started.IsZero() {
			c.metrics.CallFailed(opnum)
		}
		return nil, &ErrFault{Status: fault.Status}
	}
	if !started.IsZero() {
		c.metrics.CallCompleted(opnum, time.Since(started).Seconds())
	}
	return res.p, nil
}

func opnumOf(p pdu.PDU) uint16 {
	if r, ok := p.(*pdu.Request); ok {
		return r.Opnum
	}
	return 0
}

// setCallID writes callID into p's header. p is always a pointer to one
// of this package's concrete PDU types, all of which embed a
// pdu.CommonHeader named Header.
func setCallID(p pdu.PDU, callID uint32) {
	switch v := p.(type) {
	case *pdu.Bind:
		v.Header.CallID = callID
	case *pdu.BindAck:
		v.Header.CallID = callID
	case *pdu.Request:
		v.Header.CallID = callID
	case *pdu.Response:
		v.Header.CallID = callID
	case *pdu.Fault:
		v.Header.CallID = callID
	}
}

// runOutboundPump dequeues PDUs and writes them to the transport in
// enqueue order, suspending on dequeue (channel receive) and on write.
func (c *Connection) runOutboundPump(ctx context.Context) error {
	for {
		select {
		case p := <-c.outboundCh:
			encoded, err := p.Encode()
			if err != nil {
				c.logger.Errorw("encode failed, closing connection", "error", err)
				return fmt.Errorf("outbound pump encode: %w", err)
			}
			if _, err := c.transport.Write(ctx, encoded); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Errorw("transport write failed, closing connection", "error", err)
				return fmt.Errorf("outbound pump write: %w", err)
			}
			c.metrics.CallSent(opnumOf(p))
		case <-ctx.Done():
			return nil
		}
	}
}

// runInboundPump reads and decodes PDUs, enqueueing each onto the
// correlator's inbound queue. A decode failure closes the connection:
// the byte stream is no longer self-synchronizing once one frame has
// been misread.
func (c *Connection) runInboundPump(ctx context.Context) error {
	for {
		raw, err := c.transport.Read(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			c.logger.Errorw("transport read failed, closing connection", "error", err)
			return fmt.Errorf("inbound pump read: %w", err)
		}

		p, err := pdu.Decode(raw)
		if err != nil {
			c.logger.Errorw("decode failed, closing connection", "error", err)
			return fmt.Errorf("inbound pump decode: %w", err)
		}

		select {
		case c.inboundCh <- p:
		case <-ctx.Done():
			return nil
		}
	}
}

// runCorrelator dequeues decoded PDUs and completes the suspension
// matching their call id. A second PDU arriving for a call id that
// already received its one allowed response is a protocol violation
// (spec.md §4.3) and closes the connection. A late response for a call
// id the caller already cancelled, or one this connection never
// allocated, is logged and discarded.
func (c *Connection) runCorrelator(ctx context.Context) error {
	for {
		select {
		case p := <-c.inboundCh:
			if err := c.correlate(p); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Connection) correlate(p pdu.PDU) error {
	callID := p.CallID()

	c.mu.Lock()
	susp, ok := c.pending[callID]
	if ok {
		delete(c.pending, callID)
		c.terminal[callID] = terminalCompleted
	}
	reason, seen := c.terminal[callID]
	c.mu.Unlock()

	if ok {
		c.metrics.SuspensionsOutstanding(-1)
		susp.respCh <- pduResult{p: p}
		return nil
	}

	if seen && reason == terminalCompleted {
		c.logger.Errorw("duplicate response for call id, closing connection", "call_id", callID)
		return fmt.Errorf("%w: duplicate response for call id %d", ErrProtocolViolation, callID)
	}

	c.logger.Warnw("late response for cancelled or unknown call id, discarding", "call_id", callID)
	return nil
}
