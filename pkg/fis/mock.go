// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements a simulated DIMM mailbox for tests and offline use
package fis

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MockExchange is one exchange seen by a MockDimm.
type MockExchange struct {
	Code  uint16
	Input []byte
}

// MockDimm simulates the mailbox of one DIMM, including the large payload area.
type MockDimm struct {
	// Small outputs returned per mailbox code
	Responses map[uint16][]byte
	// Failure injected per mailbox code
	Statuses map[uint16]CompositeStatus

	LargeInputCapacity  uint32
	LargeOutputCapacity uint32
	RWSize              uint32
	LargeOutput         []byte
	ShortRead           bool // read chunks come back one byte short

	mu          sync.Mutex
	LargeInput  []byte
	WriteChunks []LARGE_PAYLOAD_CHUNK_HEADER
	ReadChunks  []LARGE_PAYLOAD_CHUNK_HEADER
	Exchanges   []MockExchange
	Closed      int
}

func NewMockDimm() *MockDimm {
	return &MockDimm{
		Responses:           map[uint16][]byte{},
		Statuses:            map[uint16]CompositeStatus{},
		LargeInputCapacity:  PCD_SIZE,
		LargeOutputCapacity: PCD_SIZE,
		RWSize:              SMALL_PAYLOAD_SIZE,
	}
}

// SetResponse stores the small output returned for cmd.
func (m *MockDimm) SetResponse(cmd Command, out []byte) {
	m.Responses[cmd.Code()] = out
}

// SetStatus injects the status returned for cmd.
func (m *MockDimm) SetStatus(cmd Command, st CompositeStatus) {
	m.Statuses[cmd.Code()] = st
}

// Sent returns the inputs sent with cmd, in order.
func (m *MockDimm) Sent(cmd Command) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := [][]byte{}
	for _, ex := range m.Exchanges {
		if ex.Code == cmd.Code() {
			in = append(in, ex.Input)
		}
	}
	return in
}

func (m *MockDimm) Exchange(ctx context.Context, opcode uint16, input []byte, outputSize int) ([]byte, CompositeStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exchanges = append(m.Exchanges, MockExchange{Code: opcode, Input: append([]byte(nil), input...)})
	if st, ok := m.Statuses[opcode]; ok && !st.IsSuccess() {
		return nil, st
	}

	switch opcode {
	case mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_GET_PAYLOAD_SIZE):
		ps := PAYLOAD_SIZE_OUTPUT{
			Large_Input_Payload_Size:  m.LargeInputCapacity,
			Large_Output_Payload_Size: m.LargeOutputCapacity,
			RW_Size:                   m.RWSize,
		}
		return fitPayload(structtoByte(ps), outputSize), StatusSuccess

	case mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_WRITE_LARGE_PAYLOAD_INPUT):
		hdr, err := parseStruct(input, LARGE_PAYLOAD_CHUNK_HEADER{})
		if err != nil || len(input) < 8+int(hdr.Size) {
			return nil, FirmwareStatus(MB_INVALID_CMD_PARAM, 0)
		}
		m.WriteChunks = append(m.WriteChunks, hdr)
		if end := int(hdr.Offset + hdr.Size); end > len(m.LargeInput) {
			m.LargeInput = append(m.LargeInput, make([]byte, end-len(m.LargeInput))...)
		}
		copy(m.LargeInput[hdr.Offset:], input[8:8+hdr.Size])
		return nil, StatusSuccess

	case mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_READ_LARGE_PAYLOAD_OUTPUT):
		hdr, err := parseStruct(input, LARGE_PAYLOAD_CHUNK_HEADER{})
		if err != nil {
			return nil, FirmwareStatus(MB_INVALID_CMD_PARAM, 0)
		}
		m.ReadChunks = append(m.ReadChunks, hdr)
		out := make([]byte, hdr.Size)
		if int(hdr.Offset) < len(m.LargeOutput) {
			copy(out, m.LargeOutput[hdr.Offset:])
		}
		if m.ShortRead && len(out) > 0 {
			out = out[:len(out)-1]
		}
		return out, StatusSuccess
	}

	if outputSize == 0 {
		return nil, StatusSuccess
	}
	return fitPayload(m.Responses[opcode], outputSize), StatusSuccess
}

func (m *MockDimm) Close() error {
	m.mu.Lock()
	m.Closed++
	m.mu.Unlock()
	return nil
}

// MockResolver resolves handles to simulated DIMMs.
type MockResolver struct {
	Dimms map[DeviceHandle]*MockDimm

	mu       sync.Mutex
	Resolved int
}

func NewMockResolver(dimms map[DeviceHandle]*MockDimm) *MockResolver {
	return &MockResolver{Dimms: dimms}
}

func (r *MockResolver) Resolve(ctx context.Context, h DeviceHandle) (Mailbox, error) {
	r.mu.Lock()
	r.Resolved++
	r.mu.Unlock()
	d, ok := r.Dimms[h]
	if !ok {
		return nil, errors.Wrapf(ErrBadDeviceHandle, "handle 0x%X", uint32(h))
	}
	return d, nil
}
