package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	vine "github.com/reoring/vine"
)

// DuplicateKeys controls how repeated object keys in JSON input are handled.
type DuplicateKeys int

const (
	// DupLastWins keeps the last occurrence, as encoding/json does.
	DupLastWins DuplicateKeys = iota
	// DupError rejects the document.
	DupError
)

// ErrTrailingData is returned when a JSON document is followed by more data.
var ErrTrailingData = errors.New("engine: trailing data after JSON value")

// DuplicateKeyError reports a key repeated within one object.
type DuplicateKeyError struct {
	Pointer string
	Key     string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("engine: duplicate key %q at %s", e.Key, e.Pointer)
}

// DepthError reports input nested deeper than the configured limit.
type DepthError struct {
	Pointer string
	Limit   int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("engine: nesting exceeds %d at %s", e.Limit, e.Pointer)
}

type decoder struct {
	dec      *j.Decoder
	dup      DuplicateKeys
	maxDepth int
}

// DecodeJSON decodes b into the generic shape the validator consumes:
// map[string]any, []any, string, json.Number, bool and nil.
func DecodeJSON(b []byte, dup DuplicateKeys, maxDepth int) (any, error) {
	return DecodeJSONReader(bytes.NewReader(b), dup, maxDepth)
}

// DecodeJSONReader is DecodeJSON over a reader. The reader must hold exactly
// one JSON value.
func DecodeJSONReader(r io.Reader, dup DuplicateKeys, maxDepth int) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &decoder{dec: dec, dup: dup, maxDepth: maxDepth}
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := d.value(tok, vine.Root(), 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return v, nil
}

func (d *decoder) value(tok j.Token, ptr vine.PathRef, depth int) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		if d.maxDepth > 0 && depth >= d.maxDepth {
			return nil, &DepthError{Pointer: ptr.Pointer(), Limit: d.maxDepth}
		}
		switch v {
		case '{':
			return d.object(ptr, depth+1)
		case '[':
			return d.array(ptr, depth+1)
		}
		return nil, fmt.Errorf("engine: unexpected delimiter %q at %s", v, ptr.Pointer())
	case string, bool, nil:
		return v, nil
	case j.Number:
		return v, nil
	case float64:
		return j.Number(fmt.Sprint(v)), nil
	}
	return nil, fmt.Errorf("engine: unexpected token %T at %s", tok, ptr.Pointer())
}

func (d *decoder) object(ptr vine.PathRef, depth int) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, unexpected(err)
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("engine: expected object key at %s", ptr.Pointer())
		}
		child := ptr.Field(key)
		if _, seen := m[key]; seen && d.dup == DupError {
			return nil, &DuplicateKeyError{Pointer: ptr.Pointer(), Key: key}
		}
		vt, err := d.dec.Token()
		if err != nil {
			return nil, unexpected(err)
		}
		v, err := d.value(vt, child, depth)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *decoder) array(ptr vine.PathRef, depth int) (any, error) {
	arr := make([]any, 0, 4)
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, unexpected(err)
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, ptr.Index(len(arr)), depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
