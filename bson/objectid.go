// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ObjectID is the 12 byte BSON ObjectId: a 4 byte big-endian timestamp in seconds, 5 bytes unique
// to the process and a 3 byte big-endian counter. It encodes as tag 0x07 and renders as
// {"$oid":"<hex>"}.
type ObjectID [12]byte

// oidSource generates ObjectIDs for this process. It is seeded from crypto/rand on first use.
type oidSource struct {
	once    sync.Once
	process [5]byte
	counter atomic.Uint32
}

var oids oidSource

func (s *oidSource) seed() {
	var b [9]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(errors.Wrap(err, "cannot seed ObjectID generation"))
	}
	copy(s.process[:], b[:5])
	s.counter.Store(binary.LittleEndian.Uint32(b[5:]))
}

func (s *oidSource) next(secs uint32) ObjectID {
	s.once.Do(s.seed)

	var id ObjectID
	binary.BigEndian.PutUint32(id[:4], secs)
	copy(id[4:9], s.process[:])
	c := s.counter.Add(1)
	id[9], id[10], id[11] = byte(c>>16), byte(c>>8), byte(c)
	return id
}

// NewObjectID generates an ObjectID stamped with the current time.
func NewObjectID() ObjectID {
	return oids.next(uint32(time.Now().Unix()))
}

// NewObjectIDFromTimestamp generates an ObjectID stamped with t.
func NewObjectIDFromTimestamp(t time.Time) ObjectID {
	return oids.next(uint32(t.Unix()))
}

// ObjectIDFromTime returns the smallest ObjectID stamped with t: every byte after the timestamp is
// zero. It is meant for range comparisons, not as a unique identifier.
func ObjectIDFromTime(t time.Time) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[:4], uint32(t.Unix()))
	return id
}

// ObjectIDFromHex parses 24 hex characters. Any other input is an ErrArgument.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 2*len(id) {
		return ObjectID{}, newError(ErrArgument, "invalid ObjectID hex %q: want 24 characters", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return ObjectID{}, newError(ErrArgument, "invalid ObjectID hex %q", s)
	}
	return id, nil
}

// IsObjectIDHex reports whether s is 24 hex characters.
func IsObjectIDHex(s string) bool {
	_, err := ObjectIDFromHex(s)
	return err == nil
}

// Timestamp returns the creation time stored in the first four bytes, in UTC.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[:4])), 0).UTC()
}

func (id ObjectID) Hex() string { return hex.EncodeToString(id[:]) }

func (id ObjectID) IsZero() bool { return id == ObjectID{} }

// MarshalText returns the bare hex form.
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText parses the bare hex form. Empty text leaves id unchanged.
func (id *ObjectID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	parsed, err := ObjectIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalJSON returns the extended JSON form, {"$oid":"<hex>"}.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	return []byte(ExtJSON(id)), nil
}
