package ocr

import "github.com/cs20/ocr-sub000/hint"

// HintInit corresponds to ocrHintInit (spec.md §6).
func HintInit(kind hint.Kind) *hint.Mask { return hint.Init(kind) }

// SetHintValue corresponds to ocrSetHintValue: a local, synchronous
// mutation of the object's own mask (see pd/router.go's handleHintSet
// doc comment for why this bypasses the message router).
func SetHintValue(m *hint.Mask, key hint.Key, value uint64) { m.Set(key, value) }

// GetHintValue corresponds to ocrGetHintValue.
func GetHintValue(m *hint.Mask, key hint.Key) (uint64, bool) { return m.Get(key) }
