// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jtoken implements a streaming JSON token reader and writer.
//
// # Reading
//
// The Reader interface describes a forward-only source of tokens. Each call
// to Read advances to the next token and reports false when the input is
// exhausted. The TextReader type scans tokens from the text of an io.Reader:
//
//	r := jtoken.NewTextReader(input, nil)
//	for {
//	   ok, err := r.Read()
//	   if err != nil {
//	      log.Fatalf("Read failed: %v", err)
//	   } else if !ok {
//	      break
//	   }
//	   log.Printf("%s: %v", r.Path(), r.Token())
//	}
//
// The grammar accepted by a TextReader is a superset of JSON: comments,
// single-quoted strings, unquoted property names, constructor calls such as
// new Date(0), the literals undefined, NaN and Infinity, and hexadecimal and
// octal integers are all permitted.
//
// The ReadAs methods of a Reader advance to the next content token and coerce
// its value to the requested type:
//
//	n, ok, err := r.ReadAsInt32()
//	if err != nil {
//	   log.Fatalf("Reading count: %v", err)
//	} else if !ok {
//	   log.Print("No count was given")
//	}
//
// Errors have concrete type *SyntaxError, *ConversionError or *InputError.
// Once a reader reports a syntax or input error, it reports the same error
// for all subsequent calls.
//
// # Writing
//
// The Writer type enforces the token grammar on behalf of an Emitter, which
// is responsible for formatting. A Writer completes any open containers when
// it is closed:
//
//	var buf jtoken.TokenBuffer
//	w := jtoken.NewWriter(&buf, nil)
//	w.WriteStartObject()
//	w.WritePropertyName("a")
//	w.Close() // records {"a":null}
//
// The TokenBuffer type is an Emitter that records tokens, and its NewReader
// method returns a Reader that replays them. A Writer can copy tokens from any
// Reader with its WriteToken method.
//
// # Streaming
//
// The Stream type walks the tokens of a Reader and calls methods on a Handler
// value to report the structure of the input. Call Parse to process the whole
// input, or ParseOne to process a single value:
//
//	s := jtoken.NewStream(r)
//	if err := s.ParseOne(handler); err == io.EOF {
//	   log.Print("No more input")
//	} else if err != nil {
//	   log.Printf("ParseOne failed: %v", err)
//	}
//
// The methods of a handler correspond to the syntax of the input:
//
//	Input        | Methods                            | Description
//	------------ | ---------------------------------- | ---------------------
//	object       | BeginObject, EndObject             | { ... }
//	array        | BeginArray, EndArray               | [ ... ]
//	constructor  | BeginConstructor, EndConstructor   | new Name( ... )
//	member       | BeginMember, EndMember             | "key": value
//	value        | Value                              | scalars and raw text
//	--           | EndOfInput                         | end of input
//
// The parser ensures that corresponding Begin and End methods are correctly
// paired, or that an error is reported.
package jtoken
