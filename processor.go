package fanout

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const unsupportedTrigger = "Message could not be handled. This happens when the function is used with a trigger " +
	"it does not support. If so, disable advanced event handling and handle the event manually."

// Processor runs one function over Lambda payloads. Batches from supported
// sources are split and the function runs once per message, concurrently;
// anything else is handed to the function once.
//
// Usage:
//  1. Wrap the function with NewFunc, NewProc or NewAction
//  2. Create a processor with New
//  3. Serve payloads with Handle, or pass the processor to lambda.Start
//
// Processor is safe for concurrent use.
type Processor struct {
	fn           *Function
	cfg          Config
	codec        Codec
	deserializer *Deserializer
	handlers     map[Shape]sourceHandler
	hooks        hooks
	log          *logrus.Entry
}

// Option configures a Processor.
type Option func(*Processor)

// WithConfig replaces the default config.
func WithConfig(cfg Config) Option {
	return func(p *Processor) {
		p.cfg = cfg
	}
}

// WithCodec replaces the default JSON codec.
func WithCodec(c Codec) Option {
	return func(p *Processor) {
		p.codec = c
	}
}

// WithLogger sets the entry every log line is derived from.
func WithLogger(l *logrus.Entry) Option {
	return func(p *Processor) {
		p.log = l
	}
}

// New creates a Processor for fn with the given options.
//
// Example:
//
//	p, err := fanout.New(
//	    fanout.ProcOf("orders", handleOrder),
//	    fanout.WithOnFailure(func(ctx context.Context, shape fanout.Shape, id string, err error, d time.Duration) {
//	        metrics.Incr("orders.failed")
//	    }),
//	)
func New(fn *Function, opts ...Option) (*Processor, error) {
	if fn == nil {
		return nil, ErrNoFunctions
	}
	p := &Processor{
		fn:    fn,
		cfg:   DefaultConfig(),
		codec: JSONCodec(),
		log:   logrus.WithField("component", "fanout"),
	}
	for _, opt := range opts {
		opt(p)
	}

	advanced := p.cfg.AdvancedEventHandling.Enabled
	p.deserializer = NewDeserializer(fn, p.codec, advanced)
	p.handlers = map[Shape]sourceHandler{}
	if advanced {
		p.handlers = handlers
	}
	return p, nil
}

// NewFromConfig chooses the function to serve from fns according to
// cfg.Export and creates its Processor.
func NewFromConfig(cfg Config, fns []*Function, opts ...Option) (*Processor, error) {
	reg, err := NewRegistry(fns...)
	if err != nil {
		return nil, err
	}
	fn, err := reg.Choose(cfg.Export)
	if err != nil {
		return nil, err
	}
	return New(fn, append([]Option{WithConfig(cfg)}, opts...)...)
}

// Function returns the function the processor serves.
func (p *Processor) Function() *Function {
	return p.fn
}

// Invoke implements lambda.Handler. A nil result means nothing is written.
func (p *Processor) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.process(ctx, payload, &buf); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, nil
	}
	return buf.Bytes(), nil
}

// Handle reads one payload from r and writes the response, if any, to w.
//
// The processing flow:
//  1. Detect the payload's shape and decode it
//  2. For batches, run the function once per message concurrently,
//     recording failed messages by identifier
//  3. Write the source's partial batch response
//  4. For anything else, run the function once and write its result
//
// Only unreadable or undecodable payloads fail the invocation. Failed
// messages of a batch never do.
func (p *Processor) Handle(ctx context.Context, r io.Reader, w io.Writer) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read event")
	}
	return p.process(ctx, raw, w)
}

func (p *Processor) process(ctx context.Context, raw []byte, w io.Writer) error {
	env, err := p.deserializer.Deserialize(raw)
	if err != nil {
		return err
	}

	log := p.logger(ctx).WithField("shape", env.Shape.String())
	ctx = p.hooks.callOnDetect(ctx, env.Shape)

	handler, ok := p.handlers[env.Shape]
	if !ok {
		return p.direct(ctx, log, env.Value, w)
	}
	return p.batch(ctx, log, env, handler, w)
}

func (p *Processor) batch(ctx context.Context, log *logrus.Entry, env Envelope, handler sourceHandler, w io.Writer) error {
	msgs, err := handler.messages(env.Value)
	if err != nil {
		return err
	}

	// Each message starts as soon as it is yielded; Wait is the only join.
	var (
		g         errgroup.Group
		collector Collector
		total     int
	)
	for msg := range msgs {
		total++
		g.Go(collector.Collect(msg.ID, func() error {
			return p.dispatch(ctx, log, env.Shape, handler, msg)
		}))
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Batch could not be processed, no response written")
		return nil
	}

	failures := collector.Failures()
	p.hooks.callOnBatchComplete(ctx, env.Shape, total, len(failures))

	entry := log.WithFields(logrus.Fields{"messages": total, "failed": len(failures)})
	if err := collector.Err(); err != nil {
		entry.WithError(err).Warn("Batch completed with failures")
	} else {
		entry.Debug("Batch completed")
	}

	resp, ok := handler.response(failures, p.cfg)
	if !ok {
		return nil
	}
	return errors.Wrap(p.codec.Encode(w, resp), "encode batch response")
}

func (p *Processor) dispatch(ctx context.Context, log *logrus.Entry, shape Shape, handler sourceHandler, msg Message) error {
	p.hooks.callOnDispatch(ctx, shape, msg.ID)

	start := time.Now()
	err := safely(func() error {
		in, err := p.input(handler, msg)
		if err != nil {
			return err
		}
		_, err = p.fn.Call(ctx, in)
		return err
	})
	duration := time.Since(start)

	if err != nil {
		log.WithError(err).WithField("message_id", msg.ID).Error(unsupportedTrigger)
		p.hooks.callOnFailure(ctx, shape, msg.ID, err, duration)
		return err
	}
	p.hooks.callOnSuccess(ctx, shape, msg.ID, duration)
	return nil
}

// input passes the record itself when the function takes the source's
// record type, and decodes the record's body otherwise.
func (p *Processor) input(handler sourceHandler, msg Message) (any, error) {
	if handler.messageType() == p.fn.Input() {
		return msg.Value, nil
	}
	if !p.fn.HasInput() {
		return nil, nil
	}
	body, err := msg.Body()
	if err != nil {
		return nil, err
	}
	return p.fn.Decode(p.codec, body)
}

func (p *Processor) direct(ctx context.Context, log *logrus.Entry, in any, w io.Writer) error {
	p.hooks.callOnDispatch(ctx, ShapeUnknown, "")

	start := time.Now()
	out, err := p.fn.Call(ctx, in)
	duration := time.Since(start)
	if err != nil {
		p.hooks.callOnFailure(ctx, ShapeUnknown, "", err, duration)
		return errors.Wrapf(err, "function %s", p.fn.Name())
	}
	p.hooks.callOnSuccess(ctx, ShapeUnknown, "", duration)
	log.WithField("duration", duration).Debug("Function completed")

	if !p.fn.HasOutput() || isNil(out) {
		return nil
	}
	return errors.Wrap(p.codec.Encode(w, out), "encode function output")
}

func (p *Processor) logger(ctx context.Context) *logrus.Entry {
	entry := p.log.WithContext(ctx).WithField("function", p.fn.Name())
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		entry = entry.WithField("aws_request_id", lc.AwsRequestID)
	}
	return entry
}
