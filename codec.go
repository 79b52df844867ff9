package fanout

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Codec converts between JSON bytes and Go values. The processor uses it to
// materialize batches, decode message bodies and encode responses.
type Codec interface {
	Decode(r io.Reader, v any) error
	Unmarshal(data []byte, v any) error
	Encode(w io.Writer, v any) error
}

// JSONCodec returns the default Codec, backed by goccy/go-json.
func JSONCodec() Codec {
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("no content to decode")
		}
		return err
	}
	return nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Encode(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
