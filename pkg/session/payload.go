package session

import (
	"encoding/json"
	"errors"
)

// payload is the sealed cookie document. An inline cookie carries the
// whole store, a cache-backed cookie only the id.
type payload struct {
	ID    string          `json:"id"`
	Store json.RawMessage `json:"store,omitempty"`
}

func (p payload) inline() bool {
	return len(p.Store) > 0
}

func encodeInline(id string, store map[string]any) ([]byte, error) {
	if store == nil {
		store = map[string]any{}
	}
	raw, err := json.Marshal(store)
	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	return json.Marshal(payload{ID: id, Store: raw})
}

func encodeID(id string) ([]byte, error) {
	return json.Marshal(payload{ID: id})
}

// decodePayload parses an unsealed cookie. The id is validated; the store is
// decoded only for inline payloads.
func decodePayload(raw []byte) (payload, map[string]any, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payload{}, nil, errors.Join(ErrCookieUnseal, err)
	}
	if err := ValidateID(p.ID); err != nil {
		return payload{}, nil, errors.Join(ErrCookieUnseal, err)
	}
	if !p.inline() {
		return p, nil, nil
	}

	var store map[string]any
	if err := json.Unmarshal(p.Store, &store); err != nil {
		return payload{}, nil, errors.Join(ErrCookieUnseal, err)
	}
	if store == nil {
		store = make(map[string]any)
	}
	return p, store, nil
}
