package index

import (
	"bytes"

	"github.com/ugorji/go/codec"

	"github.com/dselans/fastx/errs"
)

var mh codec.MsgpackHandle

// encode serializes v with msgpack, used for the seq.compOther and agg.value
// BLOB columns instead of encoding/gob, for a stable cross-version wire
// format.
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &mh)
	if err := enc.Encode(v); err != nil {
		return nil, errs.WrapIoError(err, "encoding value")
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, &mh)
	if err := dec.Decode(v); err != nil {
		return errs.WrapIoError(err, "decoding value")
	}
	return nil
}
