// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the bit level decoding of packed firmware structures.
// The decoder follows the field walk of go lang's "encoding/binary" library
// and extends it so a struct field may cover less than one byte.

package fis

import (
	"bytes"
	"encoding/binary"
	"reflect"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type bitfield_1b uint8
type bitfield_2b uint8
type bitfield_4b uint8
type bitfield_5b uint8
type bitfield_6b uint8
type bitfield_12b uint16
type bitfield_13b uint16
type bitfield_14b uint16
type bitfield_20b uint32

var bitWidths = map[reflect.Type]int{
	reflect.TypeOf(bitfield_1b(0)):  1,
	reflect.TypeOf(bitfield_2b(0)):  2,
	reflect.TypeOf(bitfield_4b(0)):  4,
	reflect.TypeOf(bitfield_5b(0)):  5,
	reflect.TypeOf(bitfield_6b(0)):  6,
	reflect.TypeOf(bitfield_12b(0)): 12,
	reflect.TypeOf(bitfield_13b(0)): 13,
	reflect.TypeOf(bitfield_14b(0)): 14,
	reflect.TypeOf(bitfield_20b(0)): 20,
}

// ErrShortBuffer is returned when a wire buffer is smaller than the structure decoded from it.
var ErrShortBuffer = errors.New("wire buffer shorter than structure")

// dataSize returns the number of bytes the decoded value v occupies once every bit field
// has been widened to its Go type.
func dataSize(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return 0
		}
		if s := dataSize(v.Index(0)); s >= 0 {
			return s * v.Len()
		}
		return -1

	case reflect.Struct:
		sum := 0
		for i, n := 0, v.NumField(); i < n; i++ {
			s := dataSize(v.Field(i))
			if s < 0 {
				return -1
			}
			sum += s
		}
		return sum

	case reflect.Bool, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Type().Size())
	}
	return -1
}

// bitSizeOfArray returns the wire width in bits of every leaf field of v, in order.
func bitSizeOfArray(v reflect.Value) []int {
	if w, ok := bitWidths[v.Type()]; ok {
		return []int{w}
	}

	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		widths := []int{}
		if v.Len() != 0 {
			s := bitSizeOfArray(v.Index(0))
			for i := 0; i < v.Len(); i++ {
				widths = append(widths, s...)
			}
		}
		return widths
	case reflect.Struct:
		widths := []int{}
		for i := 0; i < v.NumField(); i++ {
			widths = append(widths, bitSizeOfArray(v.Field(i))...)
		}
		return widths
	case reflect.Bool, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []int{int(v.Type().Size()) * 8}
	}
	klog.V(DBG_LVL_INFO).InfoS("bitfield.bitSizeOfArray unsupported", "kind", v.Kind().String())
	return []int{}
}

// wireSize returns the packed size in bytes of s.
func wireSize(s any) int {
	bits := 0
	for _, w := range bitSizeOfArray(reflect.ValueOf(s)) {
		bits += w
	}
	return (bits + 7) >> 3
}

// readByBit widens every packed field of src, as described by the widths in m, into
// byte aligned little endian slots of dst.
func readByBit(src []byte, dst []byte, m []int) error {
	bitOfs := 0
	i := 0
	for _, width := range m {
		if width > 64 {
			return errors.Errorf("bitfield.readByBit: unsupported width %d", width)
		}
		endBit := bitOfs + width - 1
		startByte := bitOfs >> 3
		endByte := endBit >> 3
		bitShift := bitOfs - startByte*8

		var val uint64
		if endByte-startByte < 8 {
			for iShift := 0; iShift <= endByte-startByte; iShift++ {
				val |= uint64(src[startByte+iShift]) << (8 * iShift)
			}
			val >>= uint64(bitShift)
		} else {
			// 64 bit field that is not byte aligned spills into a ninth byte
			lo := binary.LittleEndian.Uint64(src[startByte:])
			val = lo>>uint64(bitShift) | uint64(src[endByte])<<(64-uint64(bitShift))
		}
		if width < 64 {
			val &= (1 << width) - 1
		}

		n := slotSize(width)
		for iShift := 0; iShift < n; iShift++ {
			dst[i+iShift] = byte(val >> (8 * iShift))
		}
		i += n
		bitOfs += width
	}
	return nil
}

// slotSize returns the size in bytes of the Go integer holding a field of width bits.
func slotSize(width int) int {
	switch {
	case width <= 8:
		return 1
	case width <= 16:
		return 2
	case width <= 32:
		return 4
	}
	return 8
}

// bitFieldRead decodes src into data, which must be a pointer to a fixed size value.
// Fields typed bitfield_Nb consume N bits; every other field consumes its natural size.
func bitFieldRead(src []byte, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer {
		return errors.Errorf("bitfield.bitFieldRead: invalid type %s", reflect.TypeOf(data))
	}
	v = v.Elem()
	size := dataSize(v)
	if size < 0 {
		return errors.Errorf("bitfield.bitFieldRead: invalid type %s", reflect.TypeOf(data))
	}

	widths := bitSizeOfArray(v)
	bits := 0
	for _, w := range widths {
		bits += w
	}
	if len(src)*8 < bits {
		return errors.Wrapf(ErrShortBuffer, "%s needs %d bytes, have %d", v.Type(), (bits+7)>>3, len(src))
	}

	d := &decoder{order: binary.LittleEndian, buf: make([]byte, size)}
	if err := readByBit(src, d.buf, widths); err != nil {
		return err
	}
	d.value(v)
	return nil
}

// parse binary array into struct.
func parseStruct[T any](b []byte, s T) (T, error) {
	newStruct := s
	err := bitFieldRead(b, &newStruct)
	return newStruct, err
}

// structtoByte packs s in little endian order.
func structtoByte(s any) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, s); err != nil {
		klog.ErrorS(err, "bitfield.structtoByte", "type", reflect.TypeOf(s).String())
		return nil
	}
	return buf.Bytes()
}

type decoder struct {
	order  binary.ByteOrder
	buf    []byte
	offset int
}

func (d *decoder) uint8() uint8 {
	x := d.buf[d.offset]
	d.offset++
	return x
}

func (d *decoder) uint16() uint16 {
	x := d.order.Uint16(d.buf[d.offset : d.offset+2])
	d.offset += 2
	return x
}

func (d *decoder) uint32() uint32 {
	x := d.order.Uint32(d.buf[d.offset : d.offset+4])
	d.offset += 4
	return x
}

func (d *decoder) uint64() uint64 {
	x := d.order.Uint64(d.buf[d.offset : d.offset+8])
	d.offset += 8
	return x
}

func (d *decoder) value(v reflect.Value) {
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			d.value(v.Index(i))
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			d.value(v.Field(i))
		}

	case reflect.Bool:
		v.SetBool(d.uint8() != 0)

	case reflect.Int8:
		v.SetInt(int64(int8(d.uint8())))
	case reflect.Int16:
		v.SetInt(int64(int16(d.uint16())))
	case reflect.Int32:
		v.SetInt(int64(int32(d.uint32())))
	case reflect.Int64:
		v.SetInt(int64(d.uint64()))

	case reflect.Uint8:
		v.SetUint(uint64(d.uint8()))
	case reflect.Uint16:
		v.SetUint(uint64(d.uint16()))
	case reflect.Uint32:
		v.SetUint(uint64(d.uint32()))
	case reflect.Uint64:
		v.SetUint(d.uint64())
	}
}

// convert a one bit field to bool
func UintToBool(i bitfield_1b) bool {
	return i == 1
}
