package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mellowdrifter/dcerpc/pdu"
)

// Request is implemented by a concrete upper-layer operation's request
// type so it can ride a Request PDU's stub data.
type Request interface {
	Opnum() uint16
	Marshal() ([]byte, error)
}

// ReturnCodeTable maps an upper-layer protocol's nonzero return codes to
// named errors. ObtainResponse falls back to UpperLayerError when a
// return code has no entry.
type ReturnCodeTable map[uint32]error

// UpperLayerError wraps a return code the ReturnCodeTable does not name.
type UpperLayerError struct {
	Code uint32
}

func (e *UpperLayerError) Error() string {
	return fmt.Sprintf("rpc: upper-layer error, return code %#x", e.Code)
}

// ObtainResponse sends req as a Request PDU on contextID, awaits the
// matching Response, and decodes its stub data with decode. This is the
// only place Connection's generic call/response plumbing meets a
// concrete upper-layer protocol: the envelope owns no knowledge of that
// protocol beyond Request, decode, and table.
//
// If raise is true and decode reports a nonzero return code (by
// returning it alongside a non-nil error satisfying errors.As into
// *ReturnCodeError), the code is mapped through table into a named
// error, or UpperLayerError if table has no entry for it.
func ObtainResponse[Req Request, Resp any](
	ctx context.Context,
	conn *Connection,
	contextID uint16,
	req Req,
	decode func([]byte) (Resp, error),
	table ReturnCodeTable,
	raise bool,
) (Resp, error) {
	var zero Resp

	stub, err := req.Marshal()
	if err != nil {
		return zero, fmt.Errorf("marshal request: %w", err)
	}

	reqPDU := pdu.NewRequest(contextID, req.Opnum(), stub)
	res, err := conn.SendMessage(ctx, reqPDU, true)
	if err != nil {
		return zero, err
	}

	response, ok := res.(*pdu.Response)
	if !ok {
		return zero, fmt.Errorf("%w: expected Response, got %T", pdu.ErrTypeMismatch, res)
	}

	resp, err := decode(response.StubData)
	if err != nil {
		var rcErr *ReturnCodeError
		if raise && errors.As(err, &rcErr) {
			if mapped, ok := table[rcErr.Code]; ok {
				return zero, mapped
			}
			return zero, &UpperLayerError{Code: rcErr.Code}
		}
		return zero, fmt.Errorf("decode response: %w", err)
	}

	return resp, nil
}

// ReturnCodeError is returned by a decode function to signal that the
// upper-layer protocol's stub data carried a nonzero return code, for
// ObtainResponse to map through its ReturnCodeTable.
type ReturnCodeError struct {
	Code uint32
}

func (e *ReturnCodeError) Error() string {
	return fmt.Sprintf("rpc: return code %#x", e.Code)
}
