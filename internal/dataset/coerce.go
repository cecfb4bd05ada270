package dataset

import (
	"bytes"
	"encoding/json"
	"errors"

	"golang.org/x/text/unicode/norm"
)

// containerKeys are checked in order when a dataset is wrapped in an object.
var containerKeys = []string{"records", "rows", "items", "data", "scores"}

var errNotObject = errors.New("not a json object")

type nodeKind int

const (
	kindScalar nodeKind = iota
	kindArray
	kindObject
)

type field struct {
	key   string
	value json.RawMessage
}

// node is a shallow decode of one JSON value: arrays keep their raw
// elements and objects keep their fields in document order.
type node struct {
	kind   nodeKind
	items  []json.RawMessage
	fields []field
}

// Coerce turns a dataset document of unknown shape into a flat list of
// records. It never fails: anything it cannot read yields an empty list.
//
// Accepted shapes are a bare array, an object wrapping the array under one
// of the container keys, or an object keyed by student id whose values are
// either a record or an array of records. Records taken from a keyed object
// get the key as "id" when they carry no identifier of their own.
func Coerce(raw []byte) []Record {
	n, err := decodeNode(raw)
	if err != nil {
		return []Record{}
	}

	switch n.kind {
	case kindArray:
		return decodeRecords(n.items)
	case kindObject:
		for _, ck := range containerKeys {
			for _, f := range n.fields {
				if f.key != ck {
					continue
				}
				if inner, err := decodeNode(f.value); err == nil && inner.kind == kindArray {
					return decodeRecords(inner.items)
				}
			}
		}
		return flattenKeyed(n.fields)
	default:
		return []Record{}
	}
}

func flattenKeyed(fields []field) []Record {
	out := make([]Record, 0, len(fields))
	for _, f := range fields {
		inner, err := decodeNode(f.value)
		if err != nil {
			continue
		}
		switch inner.kind {
		case kindArray:
			for _, rec := range decodeRecords(inner.items) {
				out = append(out, stampIdentity(rec, f.key))
			}
		case kindObject:
			rec, err := decodeRecord(f.value)
			if err != nil {
				continue
			}
			out = append(out, stampIdentity(rec, f.key))
		}
	}
	return out
}

func stampIdentity(rec Record, key string) Record {
	if rec.Identity() != "" {
		return rec
	}
	out := rec.clone()
	out["id"] = key
	return out
}

func decodeRecords(items []json.RawMessage) []Record {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		rec, err := decodeRecord(it)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func decodeRecord(raw json.RawMessage) (Record, error) {
	if firstByte(raw) != '{' {
		return nil, errNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	out := make(Record, len(m))
	for k, v := range m {
		out[norm.NFC.String(k)] = v
	}
	return out, nil
}

func decodeNode(raw []byte) (node, error) {
	switch firstByte(raw) {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return node{}, err
		}
		return node{kind: kindArray, items: items}, nil
	case '{':
		fields, err := decodeFields(raw)
		if err != nil {
			return node{}, err
		}
		return node{kind: kindObject, fields: fields}, nil
	default:
		if !json.Valid(raw) {
			return node{}, errors.New("invalid json")
		}
		return node{kind: kindScalar}, nil
	}
}

func decodeFields(raw []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var out []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, field{key: norm.NFC.String(key), value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func firstByte(raw []byte) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
