// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the type of a token in the JSON grammar.
type Kind byte

// Constants defining the valid Kind values.
const (
	None             Kind = iota // no token has been read
	StartObject                  // left brace "{"
	StartArray                   // left square bracket "["
	StartConstructor             // constructor start: new Name(
	PropertyName                 // object member name
	Comment                      // comment text, without delimiters
	Raw                          // raw JSON text, written verbatim
	Integer                      // number: integer with no fraction or exponent
	Float                        // number with fraction and/or exponent
	String                       // string
	Boolean                      // constant: true or false
	Null                         // constant: null
	Undefined                    // constant: undefined
	EndObject                    // right brace "}"
	EndArray                     // right square bracket "]"
	EndConstructor               // right parenthesis ")"
	Date                         // date and time
	Bytes                        // binary data

	// Do not modify the order of these constants without updating the
	// classification helpers below.
)

var kindStr = [...]string{
	None:             "None",
	StartObject:      "StartObject",
	StartArray:       "StartArray",
	StartConstructor: "StartConstructor",
	PropertyName:     "PropertyName",
	Comment:          "Comment",
	Raw:              "Raw",
	Integer:          "Integer",
	Float:            "Float",
	String:           "String",
	Boolean:          "Boolean",
	Null:             "Null",
	Undefined:        "Undefined",
	EndObject:        "EndObject",
	EndArray:         "EndArray",
	EndConstructor:   "EndConstructor",
	Date:             "Date",
	Bytes:            "Bytes",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return fmt.Sprintf("Kind(%d)", v)
	}
	return kindStr[v]
}

// IsStart reports whether k opens a container.
func (k Kind) IsStart() bool {
	return k == StartObject || k == StartArray || k == StartConstructor
}

// IsEnd reports whether k closes a container.
func (k Kind) IsEnd() bool {
	return k == EndObject || k == EndArray || k == EndConstructor
}

// IsPrimitive reports whether k is a scalar value token.
func (k Kind) IsPrimitive() bool {
	switch k {
	case Integer, Float, String, Boolean, Null, Undefined, Date, Bytes:
		return true
	}
	return false
}

// A ContainerKind identifies the type of an open container.
type ContainerKind byte

// Constants defining the valid ContainerKind values.
const (
	NoContainer ContainerKind = iota
	Object
	Array
	Constructor
)

func (c ContainerKind) String() string {
	switch c {
	case Object:
		return "Object"
	case Array:
		return "Array"
	case Constructor:
		return "Constructor"
	default:
		return "None"
	}
}

// closeKind returns the token kind that legally closes c, or None.
func (c ContainerKind) closeKind() Kind {
	switch c {
	case Object:
		return EndObject
	case Array:
		return EndArray
	case Constructor:
		return EndConstructor
	}
	return None
}

// containerFor returns the container kind opened or closed by k.
func containerFor(k Kind) ContainerKind {
	switch k {
	case StartObject, EndObject:
		return Object
	case StartArray, EndArray:
		return Array
	case StartConstructor, EndConstructor:
		return Constructor
	}
	return NoContainer
}

// A Token is a single classified unit of the JSON grammar with an optional
// payload. The concrete type of Value depends on Kind:
//
//	Kind                       | Value
//	-------------------------- | ----------------------------------------
//	PropertyName, String       | string
//	Comment, Raw               | string
//	StartConstructor           | string (the constructor name)
//	Integer                    | int64 or int32
//	Float                      | float64 or decimal.Decimal
//	Boolean                    | bool
//	Date                       | time.Time
//	Bytes                      | []byte
//	all others                 | nil
type Token struct {
	Kind  Kind
	Value any
}

func (t Token) String() string {
	if t.Value == nil {
		return t.Kind.String()
	}
	return fmt.Sprintf("%v(%v)", t.Kind, t.Value)
}

// TokenOf converts a string, integer, float, bool, nil, decimal.Decimal,
// time.Time, []byte or Token into a Token. It panics if v does not have one of
// those types.
func TokenOf(v any) Token {
	tok, ok := tokenOf(v)
	if !ok {
		panic(fmt.Sprintf("jtoken: unsupported value type %T", v))
	}
	return tok
}

func tokenOf(v any) (Token, bool) {
	switch t := v.(type) {
	case nil:
		return Token{Kind: Null}, true
	case Token:
		return t, true
	case string:
		return Token{Kind: String, Value: t}, true
	case bool:
		return Token{Kind: Boolean, Value: t}, true
	case int:
		return Token{Kind: Integer, Value: int64(t)}, true
	case int8:
		return Token{Kind: Integer, Value: int64(t)}, true
	case int16:
		return Token{Kind: Integer, Value: int64(t)}, true
	case int32:
		return Token{Kind: Integer, Value: int64(t)}, true
	case int64:
		return Token{Kind: Integer, Value: t}, true
	case uint8:
		return Token{Kind: Integer, Value: int64(t)}, true
	case uint16:
		return Token{Kind: Integer, Value: int64(t)}, true
	case uint32:
		return Token{Kind: Integer, Value: int64(t)}, true
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Token{}, false
		}
		return Token{Kind: Integer, Value: int64(t)}, true
	case uint64:
		if t > math.MaxInt64 {
			return Token{}, false
		}
		return Token{Kind: Integer, Value: int64(t)}, true
	case float32:
		return Token{Kind: Float, Value: float64(t)}, true
	case float64:
		return Token{Kind: Float, Value: t}, true
	case decimal.Decimal:
		return Token{Kind: Float, Value: t}, true
	case time.Time:
		return Token{Kind: Date, Value: t}, true
	case []byte:
		return Token{Kind: Bytes, Value: t}, true
	}
	return Token{}, false
}
