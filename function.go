package fanout

import (
	"context"
	"io"
	"reflect"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// validatable is the interface for payload validation.
// Compatible with github.com/go-ozzo/ozzo-validation/v4.
type validatable interface {
	Validate() error
}

// Proc (procedure) processes a message without returning a result.
//
// The type parameter T is the input type. When T is one of the record types
// of a supported source (events.SQSMessage, events.KinesisEventRecord, ...),
// records of that source are passed as-is. Otherwise the message body is
// decoded into T and validated if T implements Validate() error.
//
// Example:
//
//	type OrderPlacedProc struct {
//	    db *sql.DB
//	}
//
//	func (p *OrderPlacedProc) Run(ctx context.Context, order Order) error {
//	    _, err := p.db.ExecContext(ctx, "INSERT INTO orders ...", order.ID)
//	    return err
//	}
type Proc[T any] interface {
	Run(ctx context.Context, payload T) error
}

// ProcFunc is a function adapter for Proc.
type ProcFunc[T any] func(ctx context.Context, payload T) error

// Run implements the Proc interface.
func (f ProcFunc[T]) Run(ctx context.Context, payload T) error {
	return f(ctx, payload)
}

// Func (function) processes a message and returns a typed result. The result
// is written back only when the payload is not a batch.
type Func[T, R any] interface {
	Call(ctx context.Context, payload T) (R, error)
}

// FuncFunc is a function adapter for Func.
type FuncFunc[T, R any] func(ctx context.Context, payload T) (R, error)

// Call implements the Func interface.
func (f FuncFunc[T, R]) Call(ctx context.Context, payload T) (R, error) {
	return f(ctx, payload)
}

// MessageType tags the Go type of a function input or of a source record.
// A record is handed to the function undecoded only when both tags match.
type MessageType int

const (
	// MessageNone is the input of a function that takes no input.
	MessageNone MessageType = iota
	// MessageOther is any type that is not a source record.
	MessageOther
	MessageSQS
	MessageSNS
	MessageKinesis
	MessagePipesKinesis
	MessageDynamoDB
	MessageCloudEvent
)

func messageTypeOf[T any]() MessageType {
	var zero T
	switch any(zero).(type) {
	case events.SQSMessage:
		return MessageSQS
	case events.SNSEventRecord:
		return MessageSNS
	case events.KinesisEventRecord:
		return MessageKinesis
	case PipesKinesisRecord:
		return MessagePipesKinesis
	case events.DynamoDBEventRecord:
		return MessageDynamoDB
	case CloudEvent:
		return MessageCloudEvent
	}
	return MessageOther
}

// Function is the user function bound to its declared input and output
// types. It is built once at startup and is safe for concurrent use.
type Function struct {
	name   string
	input  MessageType
	output bool
	decode func(c Codec, r io.Reader) (any, error)
	call   func(ctx context.Context, in any) (any, error)
}

// NewFunc wraps a Func that returns a result.
func NewFunc[T, R any](name string, f Func[T, R]) *Function {
	return &Function{
		name:   name,
		input:  messageTypeOf[T](),
		output: true,
		decode: decodeInput[T],
		call: typedCall(func(ctx context.Context, in T) (any, error) {
			return f.Call(ctx, in)
		}),
	}
}

// FuncOf is a convenience for NewFunc with a plain function.
//
//	fanout.FuncOf("lookup", func(ctx context.Context, in Input) (*Result, error) {
//	    return &Result{...}, nil
//	})
func FuncOf[T, R any](name string, fn func(ctx context.Context, payload T) (R, error)) *Function {
	return NewFunc(name, FuncFunc[T, R](fn))
}

// NewProc wraps a Proc.
func NewProc[T any](name string, p Proc[T]) *Function {
	return &Function{
		name:   name,
		input:  messageTypeOf[T](),
		decode: decodeInput[T],
		call: typedCall(func(ctx context.Context, in T) (any, error) {
			return nil, p.Run(ctx, in)
		}),
	}
}

// ProcOf is a convenience for NewProc with a plain function.
func ProcOf[T any](name string, fn func(ctx context.Context, payload T) error) *Function {
	return NewProc(name, ProcFunc[T](fn))
}

// NewAction wraps a function that takes no input. It runs once per message
// of a batch, or once for any other payload.
func NewAction(name string, fn func(ctx context.Context) error) *Function {
	return &Function{
		name:  name,
		input: MessageNone,
		call: func(ctx context.Context, _ any) (any, error) {
			return nil, fn(ctx)
		},
	}
}

// Name returns the name the function was registered with.
func (f *Function) Name() string { return f.name }

// Input returns the tag of the declared input type.
func (f *Function) Input() MessageType { return f.input }

// HasInput reports whether the function declares an input.
func (f *Function) HasInput() bool { return f.input != MessageNone }

// HasOutput reports whether the function returns a result.
func (f *Function) HasOutput() bool { return f.output }

// Decode reads the function's input from r. Functions without input decode
// to nil without touching r.
func (f *Function) Decode(c Codec, r io.Reader) (any, error) {
	if !f.HasInput() {
		return nil, nil
	}
	return f.decode(c, r)
}

// Call invokes the function.
func (f *Function) Call(ctx context.Context, in any) (any, error) {
	return f.call(ctx, in)
}

func decodeInput[T any](c Codec, r io.Reader) (any, error) {
	var data T
	if err := c.Decode(r, &data); err != nil {
		return nil, &decodeError{err: err}
	}

	if v, ok := any(data).(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, &validationError{err: err}
		}
	} else if v, ok := any(&data).(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, &validationError{err: err}
		}
	}

	return data, nil
}

func typedCall[T any](fn func(ctx context.Context, in T) (any, error)) func(ctx context.Context, in any) (any, error) {
	return func(ctx context.Context, in any) (any, error) {
		var payload T
		if in != nil {
			v, ok := in.(T)
			if !ok {
				return nil, errors.Errorf("function input is %T, want %T", in, payload)
			}
			payload = v
		}
		return fn(ctx, payload)
	}
}

// isNil reports whether a function result is empty, including typed nil
// pointers, maps and slices behind the interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// decodeError wraps body decoding errors so we can identify them.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode input: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// validationError wraps validation errors so we can identify them.
type validationError struct {
	err error
}

func (e *validationError) Error() string { return "validate input: " + e.err.Error() }
func (e *validationError) Unwrap() error { return e.err }

// IsDecodeError reports whether err came from decoding a function input.
func IsDecodeError(err error) bool {
	var d *decodeError
	return errors.As(err, &d)
}

// IsValidationError reports whether err came from validating a function input.
func IsValidationError(err error) bool {
	var v *validationError
	return errors.As(err, &v)
}
