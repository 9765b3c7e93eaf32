// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package fis

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_ChunkPlan(t *testing.T) {
	for name, tc := range map[string]struct {
		size uint32
		rw   uint32
		exp  []LARGE_PAYLOAD_CHUNK_HEADER
	}{
		"uneven tail": {
			size: 300,
			rw:   128,
			exp: []LARGE_PAYLOAD_CHUNK_HEADER{
				{Size: 128, Offset: 0},
				{Size: 128, Offset: 128},
				{Size: 44, Offset: 256},
			},
		},
		"exact multiple": {
			size: 256,
			rw:   128,
			exp: []LARGE_PAYLOAD_CHUNK_HEADER{
				{Size: 128, Offset: 0},
				{Size: 128, Offset: 128},
			},
		},
		"smaller than one chunk": {
			size: 10,
			rw:   128,
			exp:  []LARGE_PAYLOAD_CHUNK_HEADER{{Size: 10, Offset: 0}},
		},
		"empty": {
			size: 0,
			rw:   128,
			exp:  []LARGE_PAYLOAD_CHUNK_HEADER{},
		},
		"zero rw size": {
			size: 300,
			rw:   0,
			exp:  nil,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.exp, chunkPlan(tc.size, tc.rw)); diff != "" {
				t.Fatalf("unexpected plan (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestPayload_ChunkPlanCoversPayload(t *testing.T) {
	for _, size := range []uint32{1, 127, 128, 129, 4096, 131073} {
		for _, rw := range []uint32{1, 64, 128, 1000} {
			plan := chunkPlan(size, rw)
			assert.Len(t, plan, int((size+rw-1)/rw))

			var next uint32
			for _, c := range plan {
				assert.Equal(t, next, c.Offset)
				assert.LessOrEqual(t, c.Size, rw)
				next += c.Size
			}
			assert.Equal(t, size, next)
		}
	}
}

func testPayload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func TestPayload_Write(t *testing.T) {
	m := NewMockDimm()
	data := testPayload(300)

	st := writeLargePayload(context.Background(), m, data)
	require.True(t, st.IsSuccess(), st.Message())

	assert.Equal(t, data, m.LargeInput)
	exp := []LARGE_PAYLOAD_CHUNK_HEADER{
		{Size: 128, Offset: 0},
		{Size: 128, Offset: 128},
		{Size: 44, Offset: 256},
	}
	if diff := cmp.Diff(exp, m.WriteChunks); diff != "" {
		t.Fatalf("unexpected chunks (-want, +got):\n%s", diff)
	}
}

func TestPayload_Read(t *testing.T) {
	m := NewMockDimm()
	m.RWSize = 100
	m.LargeOutput = testPayload(250)

	out, st := readLargePayload(context.Background(), m, 250)
	require.True(t, st.IsSuccess(), st.Message())
	assert.Equal(t, m.LargeOutput, out)
	assert.Len(t, m.ReadChunks, 3)
}

func TestPayload_Failures(t *testing.T) {
	readCode := mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_READ_LARGE_PAYLOAD_OUTPUT)
	writeCode := mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_WRITE_LARGE_PAYLOAD_INPUT)
	sizeCode := mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_GET_PAYLOAD_SIZE)

	for name, tc := range map[string]struct {
		setup     func(m *MockDimm)
		write     bool
		expStatus CompositeStatus
		expChunks int
	}{
		"write exceeds capacity": {
			setup:     func(m *MockDimm) { m.LargeInputCapacity = 100 },
			write:     true,
			expStatus: TransportStatus(PT_ERR_UNKNOWN),
		},
		"read exceeds capacity": {
			setup:     func(m *MockDimm) { m.LargeOutputCapacity = 100 },
			expStatus: TransportStatus(PT_ERR_UNKNOWN),
		},
		"zero rw size": {
			setup:     func(m *MockDimm) { m.RWSize = 0 },
			write:     true,
			expStatus: TransportStatus(PT_ERR_UNKNOWN),
		},
		"size query fails": {
			setup:     func(m *MockDimm) { m.Statuses[sizeCode] = FirmwareStatus(MB_DEVICE_BUSY, 0) },
			expStatus: FirmwareStatus(MB_DEVICE_BUSY, 0),
		},
		"short chunk": {
			setup:     func(m *MockDimm) { m.ShortRead = true },
			expStatus: TransportStatus(PT_ERR_DRIVERFAILED),
			expChunks: 1,
		},
		"read chunk fails": {
			setup:     func(m *MockDimm) { m.Statuses[readCode] = FirmwareStatus(MB_DATA_XFER_ERR, 0) },
			expStatus: FirmwareStatus(MB_DATA_XFER_ERR, 0),
		},
		"write chunk fails": {
			setup:     func(m *MockDimm) { m.Statuses[writeCode] = FirmwareStatus(MB_DATA_XFER_ERR, 0) },
			write:     true,
			expStatus: FirmwareStatus(MB_DATA_XFER_ERR, 0),
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := NewMockDimm()
			m.LargeOutput = testPayload(300)
			tc.setup(m)

			var st CompositeStatus
			if tc.write {
				st = writeLargePayload(context.Background(), m, testPayload(300))
			} else {
				_, st = readLargePayload(context.Background(), m, 300)
			}
			assert.Equal(t, tc.expStatus, st)
			assert.Len(t, m.ReadChunks, tc.expChunks)
			assert.Empty(t, m.WriteChunks)
		})
	}
}

func TestPayload_ChunkFailureStopsTransfer(t *testing.T) {
	m := NewMockDimm()
	m.Statuses[mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_WRITE_LARGE_PAYLOAD_INPUT)] = FirmwareStatus(MB_DATA_XFER_ERR, 0)

	writeLargePayload(context.Background(), m, testPayload(300))
	assert.Len(t, m.Sent(Command{Opcode: BIOS_EMULATED_COMMAND, SubOpcode: SUBOP_WRITE_LARGE_PAYLOAD_INPUT}), 1)
}
