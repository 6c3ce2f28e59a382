package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"spritedeck/internal/sprite"
)

// Top-level keys of the catalog file.
const (
	KeyBlockList     = "blockList"
	KeyBlockDefaults = "blockDefaults"
)

// emptyTop returns the top-level object of a new catalog.
func emptyTop() sprite.Object {
	var top sprite.Object
	_ = top.SetRaw(KeyBlockList, json.RawMessage("[]"))
	_ = top.SetRaw(KeyBlockDefaults, json.RawMessage("{}"))
	return top
}

// decode parses catalog bytes. The returned top-level object keeps every key
// in file order; its blockList value is replaced by an empty placeholder since
// the records live in the store.
func decode(data []byte) (sprite.Object, []sprite.Record, error) {
	var top sprite.Object
	if err := top.UnmarshalJSON(data); err != nil {
		return sprite.Object{}, nil, fmt.Errorf("top level: %w", err)
	}

	var records []sprite.Record
	if raw, ok := top.Raw(KeyBlockList); ok && !isNull(raw) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return sprite.Object{}, nil, fmt.Errorf("%s: expected array: %w", KeyBlockList, err)
		}
		records = make([]sprite.Record, 0, len(items))
		for i, item := range items {
			var r sprite.Record
			if err := r.UnmarshalJSON(item); err != nil {
				return sprite.Object{}, nil, fmt.Errorf("%s[%d]: %w", KeyBlockList, i, err)
			}
			records = append(records, r)
		}
	}
	_ = top.SetRaw(KeyBlockList, json.RawMessage("[]"))

	if raw, ok := top.Raw(KeyBlockDefaults); !ok || isNull(raw) {
		_ = top.SetRaw(KeyBlockDefaults, json.RawMessage("{}"))
	} else if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return sprite.Object{}, nil, errors.New(KeyBlockDefaults + ": expected object")
	}
	return top, records, nil
}

// encode renders the catalog with two-space indentation. Strings are written
// as stored, so non-ASCII text and HTML characters stay literal.
func encode(top sprite.Object, records []sprite.Record) ([]byte, error) {
	var list bytes.Buffer
	list.WriteByte('[')
	for i, r := range records {
		if i > 0 {
			list.WriteByte(',')
		}
		raw, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", KeyBlockList, i, err)
		}
		list.Write(raw)
	}
	list.WriteByte(']')

	out := top.Clone()
	if err := out.SetRaw(KeyBlockList, list.Bytes()); err != nil {
		return nil, err
	}
	compact, err := out.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return nil, err
	}
	pretty.WriteByte('\n')
	return pretty.Bytes(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
