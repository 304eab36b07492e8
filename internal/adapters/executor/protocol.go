// Package executor provides the executor variants backing the pool: in-process
// transformers, worker subprocesses and the line-delimited JSON protocol they speak.
package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

const kindTransform = "transform"

// Request is one task frame sent to a worker.
type Request struct {
	ID   uint64       `json:"id"`
	Task *domain.Task `json:"task"`
}

// Response is the worker's answer to the Request with the same ID.
type Response struct {
	ID     uint64         `json:"id"`
	Result *domain.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Kind   string         `json:"kind,omitempty"`
}

// NewResponse encodes the outcome of a transformation.
func NewResponse(id uint64, res *domain.Result, err error) Response {
	resp := Response{ID: id, Result: res}
	if err != nil {
		resp.Result = nil
		resp.Error = err.Error()
		if errors.Is(err, domain.ErrTransformFailure) {
			resp.Kind = kindTransform
		}
	}
	return resp
}

// Outcome decodes the response back into a result or a classified error.
func (r Response) Outcome() (*domain.Result, error) {
	if r.Error != "" {
		cause := errors.New(r.Error)
		if r.Kind == kindTransform {
			return nil, errors.Join(domain.ErrTransformFailure, cause)
		}
		return nil, cause
	}
	if r.Result == nil {
		return nil, domain.Annotate(domain.ErrWorkerProtocol, "reason", "response carries neither result nor error")
	}
	return r.Result, nil
}

// Serve answers requests read from r with responses written to w until r is
// exhausted or ctx is done. Tasks are handled one at a time.
func Serve(ctx context.Context, r io.Reader, w io.Writer, transformer ports.Transformer) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return zerr.Wrap(errors.Join(domain.ErrWorkerProtocol, err), "failed to decode request")
		}

		var resp Response
		if req.Task == nil {
			resp = NewResponse(req.ID, nil, domain.Annotate(domain.ErrWorkerProtocol, "reason", "request carries no task"))
		} else {
			res, err := transformer.Transform(ctx, req.Task)
			resp = NewResponse(req.ID, res, err)
		}

		if err := enc.Encode(resp); err != nil {
			return zerr.Wrap(err, "failed to encode response")
		}
		if err := bw.Flush(); err != nil {
			return zerr.Wrap(err, "failed to flush response")
		}
	}
}
