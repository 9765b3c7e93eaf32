// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package fis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestStatus_WordLayout(t *testing.T) {
	s := CompositeStatus{
		Func:        PT_ERR_DEVICEBUSY,
		Driver:      0xA,
		Ioctl:       0x5C,
		FwStatus:    MB_INVALID_CREDENTIAL,
		FwExtStatus: MB_TIMED_OUT,
	}
	assert.Equal(t, uint32(0x12065CA7), s.Word())
	assert.Equal(t, "0x12065CA7", s.String())

	if diff := cmp.Diff(s, DecodeStatus(s.Word())); diff != "" {
		t.Fatalf("unexpected status (-want, +got):\n%s", diff)
	}
}

func TestStatus_DriverFieldIsFourBits(t *testing.T) {
	s := CompositeStatus{Driver: 0x1F}
	assert.Equal(t, uint8(0xF), DecodeStatus(s.Word()).Driver)
}

func TestStatus_IsSuccess(t *testing.T) {
	assert.True(t, StatusSuccess.IsSuccess())
	assert.False(t, TransportStatus(PT_ERR_UNKNOWN).IsSuccess())
	assert.False(t, FirmwareStatus(MB_SUCCESS, MB_ABORTED).IsSuccess())
	assert.False(t, CompositeStatus{Ioctl: 1}.IsSuccess())
}

func TestStatus_DecodeDsmStatus(t *testing.T) {
	for name, tc := range map[string]struct {
		raw uint32
		exp CompositeStatus
	}{
		"success":         {0, StatusSuccess},
		"not supported":   {1, FirmwareStatus(MB_UNSUPPORTED_CMD, 0)},
		"nonexisting":     {2, TransportStatus(PT_ERR_BADDEVICE)},
		"invalid input":   {3, FirmwareStatus(MB_INVALID_CMD_PARAM, 0)},
		"hardware error":  {4, FirmwareStatus(MB_INTERNAL_DEV_ERR, 0)},
		"retry suggested": {5, FirmwareStatus(MB_TIMED_OUT, 0)},
		"unknown":         {6, TransportStatus(PT_ERR_UNKNOWN)},
		"vendor specific": {0x00060007, FirmwareStatus(MB_VENDOR_SPECIFIC_ERR, MB_INVALID_CREDENTIAL)},
		"out of range":    {0x42, TransportStatus(PT_ERR_UNKNOWN)},
	} {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.exp, DecodeDsmStatus(tc.raw)); diff != "" {
				t.Fatalf("unexpected status (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestStatus_Message(t *testing.T) {
	for name, tc := range map[string]struct {
		in  CompositeStatus
		exp string
	}{
		"success": {StatusSuccess, ""},
		"transport": {
			TransportStatus(PT_ERR_BADDEVICEHANDLE),
			"Bad Device Handle\n",
		},
		"driver and ioctl": {
			CompositeStatus{Func: PT_ERR_DRIVERFAILED, Driver: 3, Ioctl: 0x19},
			"Driver failed for an unknown reason\n" +
				"\tDriver failed with error: 0x3\n" +
				"\tPassthrough IOCTL failed with error: 0x19\n",
		},
		"firmware": {
			FirmwareStatus(MB_INVALID_CREDENTIAL, MB_DEVICE_BUSY),
			"\tFW Status: 0x6 (Incorrect Passphrase)\n" +
				"\tFW Extended Status: 0x5 (Device Busy)\n",
		},
		"vendor specific": {
			FirmwareStatus(MB_VENDOR_SPECIFIC_ERR, MB_MEDIA_DISABLED),
			"\tFW Status: 0xff (Vendor Specific Error)\n" +
				"\tFW Extended Status: 0x14 (Media Disabled)\n",
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.exp, tc.in.Message())
		})
	}
}

func TestStatus_MailboxText(t *testing.T) {
	assert.Equal(t, "Reserved", MailboxStatus(0x13).String())
	assert.Equal(t, "No Resources Available", MB_NO_RESOURCES_AVAILABLE.String())
	assert.Equal(t, "Unknown (0x40)", MailboxStatus(0x40).String())
	assert.Equal(t, "Unknown (0x2A)", PtResult(0x2A).String())
}
