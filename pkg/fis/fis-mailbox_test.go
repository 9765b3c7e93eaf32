// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package fis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_Catalogue(t *testing.T) {
	assert.Len(t, Commands, 29)

	codes := map[uint16]string{}
	names := map[string]bool{}
	for _, c := range Commands {
		if prev, ok := codes[c.Code()]; ok {
			t.Fatalf("%s and %s share mailbox code 0x%04X", prev, c.Name, c.Code())
		}
		codes[c.Code()] = c.Name
		assert.False(t, names[c.Name], c.Name)
		names[c.Name] = true

		assert.LessOrEqual(t, c.InputSize, SMALL_PAYLOAD_SIZE, c.Name)
		assert.LessOrEqual(t, c.OutputSize, SMALL_PAYLOAD_SIZE, c.Name)
		if c.Kind == CMD_CALL {
			assert.Zero(t, c.OutputSize, c.Name)
		}
	}
}

func TestMailbox_Code(t *testing.T) {
	assert.Equal(t, uint16(0xF103), CMD_SET_PASSPHRASE.Code())
	assert.Equal(t, uint16(0x0106), CMD_PLATFORM_CONFIG_DATA.Code())
	assert.Equal(t, uint16(0x03FD), CMD_BSR.Code())
}

func TestMailbox_CommandByName(t *testing.T) {
	c, ok := CommandByName("Get_Security_State")
	require.True(t, ok)
	assert.Equal(t, CMD_GET_SECURITY_STATE, c)

	_, ok = CommandByName("get_health")
	assert.False(t, ok)
}

func TestMailbox_PassthroughSmall(t *testing.T) {
	m := NewMockDimm()
	m.SetResponse(CMD_GET_SECURITY_STATE, []byte{0x26})
	r := NewMockResolver(map[DeviceHandle]*MockDimm{0x1001: m})
	p := NewPassthrough(r)

	req := &Request{Handle: 0x1001, Opcode: 0x02, OutputSize: SMALL_PAYLOAD_SIZE}
	resp, st := p.Execute(context.Background(), req)
	require.True(t, st.IsSuccess(), st.Message())
	require.Len(t, resp.Output, SMALL_PAYLOAD_SIZE)
	assert.Equal(t, byte(0x26), resp.Output[0])
	assert.Nil(t, resp.LargeOutput)

	assert.Equal(t, 1, m.Closed)
	assert.Len(t, m.Exchanges, 1)
}

func TestMailbox_PassthroughLarge(t *testing.T) {
	m := NewMockDimm()
	m.LargeOutput = testPayload(1000)
	p := NewPassthrough(NewMockResolver(map[DeviceHandle]*MockDimm{1: m}))

	in := testPayload(200)
	resp, st := p.Execute(context.Background(), &Request{
		Handle:          1,
		Opcode:          0x06,
		SubOpcode:       0x01,
		Input:           make([]byte, SMALL_PAYLOAD_SIZE),
		LargeInput:      in,
		LargeOutputSize: 1000,
	})
	require.True(t, st.IsSuccess(), st.Message())
	assert.Equal(t, in, m.LargeInput)
	assert.Equal(t, m.LargeOutput, resp.LargeOutput)

	// writes precede the command, reads follow it
	cmdAt := -1
	for i, ex := range m.Exchanges {
		switch ex.Code {
		case CMD_PLATFORM_CONFIG_DATA.Code():
			cmdAt = i
		case mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_WRITE_LARGE_PAYLOAD_INPUT):
			assert.Equal(t, -1, cmdAt)
		case mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_READ_LARGE_PAYLOAD_OUTPUT):
			assert.NotEqual(t, -1, cmdAt)
		}
	}
	assert.NotEqual(t, -1, cmdAt)
}

func TestMailbox_PassthroughFailures(t *testing.T) {
	for name, tc := range map[string]struct {
		handle    DeviceHandle
		setup     func(m *MockDimm)
		expStatus CompositeStatus
		expReads  int
	}{
		"unknown handle": {
			handle:    0x99,
			setup:     func(m *MockDimm) {},
			expStatus: TransportStatus(PT_ERR_BADDEVICEHANDLE),
		},
		"firmware failure skips the large read": {
			handle:    1,
			setup:     func(m *MockDimm) { m.SetStatus(CMD_PLATFORM_CONFIG_DATA, FirmwareStatus(MB_INVALID_CMD_PARAM, 0)) },
			expStatus: FirmwareStatus(MB_INVALID_CMD_PARAM, 0),
		},
		"large read failure": {
			handle:    1,
			setup:     func(m *MockDimm) { m.LargeOutputCapacity = 10 },
			expStatus: TransportStatus(PT_ERR_UNKNOWN),
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := NewMockDimm()
			tc.setup(m)
			p := NewPassthrough(NewMockResolver(map[DeviceHandle]*MockDimm{1: m}))

			resp, st := p.Execute(context.Background(), &Request{
				Handle:          tc.handle,
				Opcode:          0x06,
				SubOpcode:       0x01,
				LargeOutputSize: 100,
			})
			assert.Nil(t, resp)
			assert.Equal(t, tc.expStatus, st)
			assert.Len(t, m.ReadChunks, tc.expReads)
		})
	}
}

func TestMailbox_ResolvesEveryRequest(t *testing.T) {
	m := NewMockDimm()
	r := NewMockResolver(map[DeviceHandle]*MockDimm{7: m})
	p := NewPassthrough(r)

	for i := 0; i < 3; i++ {
		_, st := p.Execute(context.Background(), &Request{Handle: 7, Opcode: 0x06, SubOpcode: 0x04, OutputSize: 1})
		require.True(t, st.IsSuccess())
	}
	assert.Equal(t, 3, r.Resolved)
	assert.Equal(t, 3, m.Closed)
}
