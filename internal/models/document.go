package models

import (
	"strings"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInteger
	KindTimestamp
	KindStringArray
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindTimestamp:
		return "timestamp"
	case KindStringArray:
		return "array"
	default:
		return "null"
	}
}

// Value is one loosely typed field of a raw contact document. Only the member
// matching Kind is meaningful. Integers keep the literal digits sent by the
// store so that phone numbers survive untouched.
type Value struct {
	Kind    ValueKind
	Str     string
	Time    time.Time
	Strings []string
}

// StringValue and the constructors below build Firestore typed values.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func IntegerValue(digits string) Value {
	return Value{Kind: KindInteger, Str: digits}
}

func TimestampValue(t time.Time) Value {
	return Value{Kind: KindTimestamp, Time: t}
}

func StringArrayValue(s ...string) Value {
	return Value{Kind: KindStringArray, Strings: s}
}

func NullValue() Value {
	return Value{Kind: KindNull}
}

// Text returns the value as text for string and integer kinds.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindString, KindInteger:
		return v.Str, true
	}
	return "", false
}

// RawDocument is a document as read from the contact store, before
// normalization. Name is the store path (or id) of the document.
type RawDocument struct {
	Name       string
	Fields     map[string]Value
	CreateTime time.Time
	UpdateTime time.Time
}

// Field looks up a field, treating an explicit null the same as a missing key.
func (d RawDocument) Field(key string) (Value, bool) {
	v, ok := d.Fields[key]
	if !ok || v.Kind == KindNull {
		return Value{}, false
	}
	return v, true
}

// ID is the final path segment of Name.
func (d RawDocument) ID() string {
	name := strings.TrimRight(d.Name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
