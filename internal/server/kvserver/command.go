package kvserver

import (
	"log/slog"
	"time"

	"github.com/levkk/kvstore/internal/core/domain"
	"github.com/levkk/kvstore/internal/storage/memory"
)

// CommandHandler decodes request lines and executes them against the Store.
type CommandHandler struct {
	store   *memory.Store
	logger  *slog.Logger
	metrics Metrics
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store *memory.Store, logger *slog.Logger, metrics Metrics) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &CommandHandler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Handle decodes one request line (without its delimiter) and executes it.
// Failures are returned as error replies; the returned Request has
// OpInvalid when the line could not be decoded.
func (h *CommandHandler) Handle(line []byte) (Request, Reply) {
	req, err := Decode(line)
	if err != nil {
		return Request{}, h.Invalid(err)
	}
	return req, h.Run(req)
}

// Run executes a decoded request and records its outcome.
func (h *CommandHandler) Run(req Request) Reply {
	start := time.Now()
	reply := h.Execute(req)

	result := ResultOK
	if reply.IsError() {
		result = ResultError
	}
	h.metrics.CommandProcessed(req.Op.String(), result, time.Since(start))
	return reply
}

// Invalid answers a line that failed to decode.
func (h *CommandHandler) Invalid(err error) Reply {
	h.logger.Debug("rejected request", "code", domain.GetErrorCode(err), "error", err)
	h.metrics.CommandProcessed(OpInvalid.String(), ResultError, 0)
	return ErrorReply(err)
}

// Execute runs a decoded request against the Store.
func (h *CommandHandler) Execute(req Request) Reply {
	switch req.Op {
	case OpPing, OpQuit:
		return NilReply()
	case OpGet:
		return h.handleGet(req)
	case OpSet:
		return h.handleSet(req)
	case OpDel:
		return h.handleDel(req)
	default:
		return ErrorReply(domain.ErrUnknownOperation.WithDetails(req.Op.String()))
	}
}

func (h *CommandHandler) handleGet(req Request) Reply {
	v, ok := h.store.Get(req.Key)
	if !ok {
		return NilReply()
	}
	return ValueReply(v)
}

func (h *CommandHandler) handleSet(req Request) Reply {
	v, err := h.store.Set(req.Key, req.Value)
	if err != nil {
		return ErrorReply(err)
	}
	return ValueReply(v)
}

func (h *CommandHandler) handleDel(req Request) Reply {
	if h.store.Delete(req.Key) {
		return ValueReply(domain.IntegerValue(1))
	}
	return ValueReply(domain.IntegerValue(0))
}

// Reject answers a request for op with err without executing it.
func (h *CommandHandler) Reject(op Op, err error) Reply {
	h.metrics.CommandProcessed(op.String(), ResultRejected, 0)
	return ErrorReply(err)
}
