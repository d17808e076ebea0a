// Copyright 2017 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2017 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vaporettoerr defines the error taxonomy shared by the model
// codec, the sentence parsers and the predictor.
package vaporettoerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers (in particular cmd/segmenter) can
// map it onto an exit code without string-matching messages.
type Kind int

const (
	// InvalidModel covers missing sections, weight-length mismatches,
	// automaton construction failures and oversized dictionary words.
	InvalidModel Kind = iota + 1

	// InvalidSentence covers an Unknown boundary found where a concrete
	// label is required (e.g. rendering tokenized text).
	InvalidSentence

	// InvalidArgument covers malformed raw/tokenized/partial-annotation
	// input: empty text, embedded NUL, bad escapes, wrong parity,
	// leading/trailing/consecutive whitespace, a tag on an empty token.
	InvalidArgument

	// Io covers failures of the underlying byte source.
	Io

	// CharsetOverflow covers a UTF-8 decode error in model strings.
	CharsetOverflow
)

func (k Kind) String() string {
	switch k {
	case InvalidModel:
		return "InvalidModel"
	case InvalidSentence:
		return "InvalidSentence"
	case InvalidArgument:
		return "InvalidArgument"
	case Io:
		return "Io"
	case CharsetOverflow:
		return "CharsetOverflow"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned across package boundaries.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates an Error of the given kind carrying a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps a lower-level
// error, matching the %w idiom used throughout this module.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and
// false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
