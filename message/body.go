// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"errors"
	"io"
)

const badBodyTypeMsg = "pipeline/message: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// A Body produces the byte content of a request. The producer, rather
// than a one-shot stream, is what a Request carries, so that a request
// with a finite body can be replayed across multiple wire-level
// attempts.
//
// Implementations of Body must be safe for concurrent use by multiple
// goroutines.
type Body interface {
	// Reader returns a fresh stream over the body content. For finite
	// bodies every call returns an independent stream over the same
	// bytes; a streaming body may support only a single call and return
	// an error on subsequent ones.
	Reader() (io.ReadCloser, error)

	// Length returns the body length in bytes, or -1 if the length is
	// not known in advance.
	Length() int64
}

// BytesBody returns a finite Body producing the given bytes. The slice
// is referenced, not copied; callers must not modify it afterward.
func BytesBody(p []byte) Body {
	return bytesBody(p)
}

type bytesBody []byte

func (b bytesBody) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (b bytesBody) Length() int64 {
	return int64(len(b))
}

// ReaderBody returns a Body whose streams are produced by open. Pass
// length -1 if the content length is not known in advance. The open
// function must be safe for concurrent use.
func ReaderBody(length int64, open func() (io.ReadCloser, error)) Body {
	if open == nil {
		panic("pipeline/message: nil open function")
	}
	return &readerBody{length: length, open: open}
}

type readerBody struct {
	length int64
	open   func() (io.ReadCloser, error)
}

func (b *readerBody) Reader() (io.ReadCloser, error) {
	return b.open()
}

func (b *readerBody) Length() int64 {
	return b.length
}

// BodyBytes converts a generic body parameter to a byte slice for use
// as a fixed request body.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. The conversion logic is:
//
// • If body is nil, a nil byte slice and no error is returned.
//
// • If body is a []byte, body itself and no error is returned.
//
// • If body is a string, the built-in conversion from string to byte
// slice, and no error, is returned.
//
// • If body is an io.Reader or io.ReadCloser, the result of reading
// the whole contents of the reader (and closing it if it implements
// Closer) is returned, along with any error encountered reading or
// closing.
//
// • If body is any other type, a nil byte slice and an error is
// returned.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}
