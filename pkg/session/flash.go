package session

// Flashes returns every pending flash message keyed by category and clears
// the bucket. The result is never nil.
func (s *Session) Flashes() map[string]any {
	bucket := s.flashBucket(false)
	out := make(map[string]any, len(bucket))
	for k, v := range bucket {
		out[k] = v
	}
	delete(s.store, flashKey)
	s.markDirty()
	return out
}

// Flash returns the pending message for category and removes it.
// Accumulated categories return a []any; a category with nothing pending
// returns an empty []any.
func (s *Session) Flash(category string) any {
	bucket := s.flashBucket(false)
	v, ok := bucket[category]
	if !ok {
		v = []any{}
	}
	delete(bucket, category)
	if len(bucket) == 0 {
		delete(s.store, flashKey)
	}
	s.markDirty()
	return v
}

// AddFlash queues message under category for the next read. With
// accumulate the message is appended to the category's list, otherwise it
// replaces whatever was pending.
func (s *Session) AddFlash(category string, message any, accumulate bool) {
	bucket := s.flashBucket(true)
	if !accumulate {
		bucket[category] = message
		s.markDirty()
		return
	}

	switch prev := bucket[category].(type) {
	case nil:
		bucket[category] = []any{message}
	case []any:
		bucket[category] = append(prev, message)
	default:
		bucket[category] = []any{prev, message}
	}
	s.markDirty()
}

// flashBucket returns the flash map stored under the reserved key.
// Decoded stores hold map[string]any, so no other shape is expected.
func (s *Session) flashBucket(create bool) map[string]any {
	if bucket, ok := s.store[flashKey].(map[string]any); ok {
		return bucket
	}
	if !create {
		return nil
	}
	bucket := make(map[string]any)
	s.store[flashKey] = bucket
	return bucket
}
