package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/caffeineduck/mdbsh/hostfunc"
)

// Protocol constants - used by language stdlibs to communicate with the host.
// Every frame the guest writes to stderr is \x00MDBSH<body>\x00:
//
//	\x00MDBSH:{json}\x00     host call
//	\x00MDBSH_READY\x00      session loop is waiting for commands
//	\x00MDBSH_DONE\x00       session command finished
//	\x00MDBSH_ERROR:msg\x00  session command raised
const (
	frameMarker    = "\x00MDBSH"
	frameSuffix    = "\x00"
	protocolPrefix = frameMarker + ":"
)

type frameKind int

const (
	frameCall frameKind = iota
	frameReady
	frameDone
	frameError
	frameUnknown
)

type frame struct {
	kind    frameKind
	payload string
}

func parseFrame(body string) frame {
	switch {
	case strings.HasPrefix(body, ":"):
		return frame{kind: frameCall, payload: body[1:]}
	case body == "_READY":
		return frame{kind: frameReady}
	case body == "_DONE":
		return frame{kind: frameDone}
	case strings.HasPrefix(body, "_ERROR:"):
		return frame{kind: frameError, payload: body[len("_ERROR:"):]}
	}
	return frame{kind: frameUnknown, payload: body}
}

// splitFrames consumes complete frames from buf. Text between frames goes
// to stderr. An incomplete frame, or a tail that could be the start of
// one, stays in buf until more data arrives.
func splitFrames(buf, stderr *bytes.Buffer) []frame {
	var frames []frame
	for {
		content := buf.String()
		idx := strings.Index(content, frameMarker)
		if idx == -1 {
			keep := partialMarker(content)
			stderr.WriteString(content[:len(content)-keep])
			buf.Reset()
			buf.WriteString(content[len(content)-keep:])
			return frames
		}
		stderr.WriteString(content[:idx])

		rest := content[idx+len(frameMarker):]
		end := strings.Index(rest, frameSuffix)
		if end == -1 {
			buf.Reset()
			buf.WriteString(content[idx:])
			return frames
		}
		frames = append(frames, parseFrame(rest[:end]))
		buf.Reset()
		buf.WriteString(rest[end+len(frameSuffix):])
	}
}

// partialMarker returns the length of the longest suffix of s that is a
// proper prefix of frameMarker.
func partialMarker(s string) int {
	for n := len(frameMarker) - 1; n > 0; n-- {
		if strings.HasSuffix(s, frameMarker[:n]) {
			return n
		}
	}
	return 0
}

type callRequest struct {
	Fn   string         `json:"fn"`
	Args map[string]any `json:"args"`
}

type callResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// dispatcher runs host calls one at a time, in arrival order, and writes
// each response as a JSON line to the guest's stdin. Calls run off the
// stderr writer so the guest is never blocked writing its own request.
type dispatcher struct {
	ctx      context.Context
	registry *hostfunc.Registry
	out      io.Writer
	logger   *zap.Logger

	queue  chan callRequest
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func newDispatcher(ctx context.Context, registry *hostfunc.Registry, out io.Writer, logger *zap.Logger) *dispatcher {
	d := &dispatcher{
		ctx:      ctx,
		registry: registry,
		out:      out,
		logger:   logger,
		queue:    make(chan callRequest, 16),
		done:     make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for req := range d.queue {
		d.respond(d.execute(req))
	}
}

// submit queues a call frame payload.
func (d *dispatcher) submit(payload string) {
	var req callRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		d.logger.Debug("invalid call frame", zap.Error(err))
		req = callRequest{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue <- req
}

func (d *dispatcher) stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *dispatcher) execute(req callRequest) callResponse {
	if req.Fn == "" {
		return callResponse{Error: "invalid call format"}
	}
	fn, ok := d.registry.Get(req.Fn)
	if !ok {
		return callResponse{Error: "unknown function: " + req.Fn}
	}

	result, err := fn(d.ctx, req.Args)
	if err != nil {
		d.logger.Debug("host call failed", zap.String("fn", req.Fn), zap.Error(err))
		return callResponse{Error: err.Error()}
	}
	return callResponse{Data: result}
}

func (d *dispatcher) respond(resp callResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"error":"internal: failed to marshal response"}`)
	}
	if _, err := d.out.Write(append(data, '\n')); err != nil {
		d.logger.Debug("guest stdin closed", zap.Error(err))
	}
}

// protocolHandler intercepts stderr of a stateless run to handle host
// calls. Regular stderr output passes through.
type protocolHandler struct {
	calls      *dispatcher
	realStderr bytes.Buffer
	buf        bytes.Buffer
	mu         sync.Mutex
}

func newProtocolHandler(calls *dispatcher) *protocolHandler {
	return &protocolHandler{calls: calls}
}

func (p *protocolHandler) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf.Write(data)
	for _, f := range splitFrames(&p.buf, &p.realStderr) {
		if f.kind == frameCall {
			p.calls.submit(f.payload)
		}
	}
	return len(data), nil
}

func (p *protocolHandler) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.realStderr.String() + p.buf.String()
}
