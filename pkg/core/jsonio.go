package core

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/prompt-sanitizer/host/internal/types"
)

// MarshalResponse pretty-prints a response as JSON for humans or pipelines.
func MarshalResponse(w io.Writer, resp Response) error {
	doc, err := types.MarshalResponse(resp)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// UnmarshalResponse decodes and validates a response document, useful for
// ingestion tests.
func UnmarshalResponse(r io.Reader) (Response, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Response{}, err
	}
	resp, err := types.UnmarshalResponse(b)
	if err != nil {
		return Response{}, err
	}
	return resp, resp.Check()
}
