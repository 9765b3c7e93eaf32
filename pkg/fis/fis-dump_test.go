// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package fis

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump_RecordAndReplay(t *testing.T) {
	ctx := context.Background()
	m := NewMockDimm()
	m.SetResponse(CMD_GET_SECURITY_STATE, []byte{0x06})
	m.SetResponse(CMD_SYSTEM_TIME, []byte{0x00, 0xF1, 0x53, 0x65})
	m.SetStatus(CMD_ENABLE_DIMM, FirmwareStatus(MB_MEDIA_DISABLED, 0))
	m.LargeOutput = testPCD()

	rec := NewRecorder(NewPassthrough(NewMockResolver(map[DeviceHandle]*MockDimm{testHandle: m})))
	live := NewClient(rec)

	state, err := live.GetSecurityState(ctx, testHandle)
	require.NoError(t, err)
	tm, err := live.SystemTime(ctx, testHandle)
	require.NoError(t, err)
	pcd, err := live.PlatformConfigData(ctx, testHandle, 1, 0, 0)
	require.NoError(t, err)
	_, err = live.EnableDimm(ctx, testHandle)
	require.Error(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, SaveRecording(fs, "/dump/dimm.yaml", rec.Recording()))

	loaded, err := LoadRecording(fs, "/dump/dimm.yaml")
	require.NoError(t, err)
	require.Len(t, loaded.Exchanges, 4)
	if diff := cmp.Diff(rec.Recording(), loaded); diff != "" {
		t.Fatalf("unexpected recording (-want, +got):\n%s", diff)
	}

	replay := NewClient(NewReplayTransport(loaded))

	gotState, err := replay.GetSecurityState(ctx, testHandle)
	require.NoError(t, err)
	assert.Equal(t, state, gotState)

	gotTime, err := replay.SystemTime(ctx, testHandle)
	require.NoError(t, err)
	assert.Equal(t, tm, gotTime)

	gotPcd, err := replay.PlatformConfigData(ctx, testHandle, 1, 0, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(pcd, gotPcd); diff != "" {
		t.Fatalf("unexpected platform config data (-want, +got):\n%s", diff)
	}

	_, err = replay.EnableDimm(ctx, testHandle)
	assert.Equal(t, ErrDeviceError, ReturnCodeOf(err))

	_, err = replay.Bsr(ctx, testHandle)
	assert.Equal(t, ErrBadDevice, ReturnCodeOf(err))
}

func TestDump_ReplayCorruptPayload(t *testing.T) {
	r := &Recording{Exchanges: []RecordedExchange{{
		Handle: testHandle,
		Opcode: CMD_IDENTIFY_DIMM.Opcode,
		Output: "not base64!",
	}}}

	_, err := NewClient(NewReplayTransport(r)).IdentifyDimm(context.Background(), testHandle)
	assert.Equal(t, ErrDriverFailed, ReturnCodeOf(err))
}

func TestDump_LoadMissing(t *testing.T) {
	_, err := LoadRecording(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
}
