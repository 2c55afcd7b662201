/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package binary provides functions to read and write binary data in a specific format.
// It avoids reflection and uses fixed-size byte slices for better performance than encoding/binary.
package binary

import (
	"bytes"
	"fmt"
	"math"
)

// WriteInt64 writes an int64 value to the buffer in big-endian format.
func WriteInt64(buffer *bytes.Buffer, value int64) error {
	data := make([]byte, 8)
	for i := range 8 {
		data[i] = byte(value >> (56 - i*8))
	}

	if _, err := buffer.Write(data); err != nil {
		return fmt.Errorf("write int64: %w", err)
	}

	return nil
}

// ReadInt64 reads an int64 value from the buffer in big-endian format.
func ReadInt64(buffer *bytes.Reader) (int64, error) {
	data := make([]byte, 8)
	if _, err := buffer.Read(data); err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}

	var value int64
	for i := range 8 {
		value = (value << 8) | int64(data[i])
	}
	return value, nil
}

// WriteUint32 writes a uint32 value to the buffer in big-endian format.
func WriteUint32(buffer *bytes.Buffer, value uint32) error {
	data := make([]byte, 4)
	data[0] = byte(value >> 24)
	data[1] = byte(value >> 16)
	data[2] = byte(value >> 8)
	data[3] = byte(value)

	if _, err := buffer.Write(data); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}

	return nil
}

// ReadUint32 reads a uint32 value from the buffer in big-endian format.
func ReadUint32(buffer *bytes.Reader) (uint32, error) {
	data := make([]byte, 4)
	if _, err := buffer.Read(data); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}

	value := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	return value, nil
}

// WriteFloat64 writes a float64 value to the buffer in big-endian format.
func WriteFloat64(buffer *bytes.Buffer, value float64) error {
	return WriteInt64(buffer, int64(math.Float64bits(value)))
}

// ReadFloat64 reads a float64 value from the buffer in big-endian format.
func ReadFloat64(buffer *bytes.Reader) (float64, error) {
	bits, err := ReadInt64(buffer)
	if err != nil {
		return 0, fmt.Errorf("read float64: %w", err)
	}
	return math.Float64frombits(uint64(bits)), nil
}

// WriteByte writes a single byte to the buffer.
func WriteByte(buffer *bytes.Buffer, value byte) error {
	if err := buffer.WriteByte(value); err != nil {
		return fmt.Errorf("write byte: %w", err)
	}
	return nil
}

// ReadByte reads a single byte from the buffer.
func ReadByte(buffer *bytes.Reader) (byte, error) {
	value, err := buffer.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("read byte: %w", err)
	}
	return value, nil
}

// WriteBool writes a boolean value to the buffer.
func WriteBool(buffer *bytes.Buffer, value bool) error {
	if value {
		return WriteByte(buffer, 1)
	}
	return WriteByte(buffer, 0)
}

// ReadBool reads a boolean value from the buffer.
func ReadBool(buffer *bytes.Reader) (bool, error) {
	value, err := ReadByte(buffer)
	if err != nil {
		return false, fmt.Errorf("read bool: %w", err)
	}
	return value != 0, nil
}

// WriteBytes writes a length-prefixed byte slice to the buffer.
func WriteBytes(buffer *bytes.Buffer, value []byte) error {
	if err := WriteUint32(buffer, uint32(len(value))); err != nil {
		return fmt.Errorf("write bytes length: %w", err)
	}
	if _, err := buffer.Write(value); err != nil {
		return fmt.Errorf("write bytes: %w", err)
	}
	return nil
}

// ReadBytes reads a length-prefixed byte slice from the buffer.
func ReadBytes(buffer *bytes.Reader) ([]byte, error) {
	length, err := ReadUint32(buffer)
	if err != nil {
		return nil, fmt.Errorf("read bytes length: %w", err)
	}
	data := make([]byte, length)
	if length > 0 {
		if _, err := buffer.Read(data); err != nil {
			return nil, fmt.Errorf("read bytes: %w", err)
		}
	}
	return data, nil
}

// WriteString writes a length-prefixed UTF-8 string to the buffer.
func WriteString(buffer *bytes.Buffer, value string) error {
	return WriteBytes(buffer, []byte(value))
}

// ReadString reads a length-prefixed UTF-8 string from the buffer.
func ReadString(buffer *bytes.Reader) (string, error) {
	data, err := ReadBytes(buffer)
	if err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return string(data), nil
}
