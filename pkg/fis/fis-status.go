// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the composite passthrough status and its text decoding
package fis

import (
	"fmt"
	"strings"
)

// PtResult is the passthrough function result reported by the transport.
type PtResult uint8

const (
	PT_SUCCESS PtResult = iota
	PT_ERR_UNKNOWN
	PT_ERR_BADDEVICEHANDLE
	PT_ERR_NOMEMORY
	PT_ERR_DRIVERFAILED
	PT_ERR_BADDEVICE
	PT_ERR_BADSECURITY
	PT_ERR_DEVICEBUSY
	PT_ERR_INVALIDPERMISSIONS
)

var ptResultText = map[PtResult]string{
	PT_SUCCESS:                "Success",
	PT_ERR_UNKNOWN:            "Unknown",
	PT_ERR_BADDEVICEHANDLE:    "Bad Device Handle",
	PT_ERR_NOMEMORY:           "No Memory",
	PT_ERR_DRIVERFAILED:       "Driver failed for an unknown reason",
	PT_ERR_BADDEVICE:          "Bad Device",
	PT_ERR_BADSECURITY:        "Bad Security",
	PT_ERR_DEVICEBUSY:         "Device Busy",
	PT_ERR_INVALIDPERMISSIONS: "Invalid Permissions",
}

func (r PtResult) String() string {
	if s, ok := ptResultText[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (0x%X)", uint8(r))
}

// MailboxStatus is the status byte the firmware writes into the mailbox.
type MailboxStatus uint8

const (
	MB_SUCCESS                       MailboxStatus = 0x00
	MB_INVALID_CMD_PARAM             MailboxStatus = 0x01
	MB_DATA_XFER_ERR                 MailboxStatus = 0x02
	MB_INTERNAL_DEV_ERR              MailboxStatus = 0x03
	MB_UNSUPPORTED_CMD               MailboxStatus = 0x04
	MB_DEVICE_BUSY                   MailboxStatus = 0x05
	MB_INVALID_CREDENTIAL            MailboxStatus = 0x06
	MB_SECURITY_CHK_FAIL             MailboxStatus = 0x07
	MB_INVALID_SECURITY_STATE        MailboxStatus = 0x08
	MB_SYSTEM_TIME_NOT_SET           MailboxStatus = 0x09
	MB_DATA_NOT_SET                  MailboxStatus = 0x0A
	MB_ABORTED                       MailboxStatus = 0x0B
	MB_NO_NEW_FW                     MailboxStatus = 0x0C
	MB_REVISION_FAILURE              MailboxStatus = 0x0D
	MB_INJECTION_DISABLED            MailboxStatus = 0x0E
	MB_CONFIG_LOCKED_COMMAND_INVALID MailboxStatus = 0x0F
	MB_INVALID_ALIGNMENT             MailboxStatus = 0x10
	MB_INCOMPATIBLE_DIMM             MailboxStatus = 0x11
	MB_TIMED_OUT                     MailboxStatus = 0x12
	MB_MEDIA_DISABLED                MailboxStatus = 0x14
	MB_FW_UPDATE_ALREADY_OCCURED     MailboxStatus = 0x15
	MB_NO_RESOURCES_AVAILABLE        MailboxStatus = 0x16

	// Not a firmware code. The platform reported a vendor specific failure and
	// the mailbox code travels in the extended status.
	MB_VENDOR_SPECIFIC_ERR MailboxStatus = 0xFF
)

// Mailbox return codes
var MB_ReturnCode = [23]string{
	"Success",                    //00h
	"Invalid Command Parameter",  //01h
	"Data Transfer Error",        //02h
	"Internal Device Error",      //03h
	"Unsupported Command",        //04h
	"Device Busy",                //05h
	"Incorrect Passphrase",       //06h
	"Security Check Failed",      //07h
	"Invalid Security State",     //08h
	"System Time Not Set",        //09h
	"Data Not Set",               //0Ah
	"Aborted",                    //0Bh
	"No New FW To Execute",       //0Ch
	"Revision Failure",           //0Dh
	"Injection Not Enabled",      //0Eh
	"Config Locked",              //0Fh
	"Invalid Alignment",          //10h
	"Incompatible DIMM Type",     //11h
	"Timeout Occurred",           //12h
	"Reserved",                   //13h
	"Media Disabled",             //14h
	"FW Update Already Occurred", //15h
	"No Resources Available",     //16h
}

func (m MailboxStatus) String() string {
	if m == MB_VENDOR_SPECIFIC_ERR {
		return "Vendor Specific Error"
	}
	if int(m) < len(MB_ReturnCode) {
		return MB_ReturnCode[m]
	}
	return fmt.Sprintf("Unknown (0x%X)", uint8(m))
}

// CompositeStatus holds every status source of one passthrough exchange.
type CompositeStatus struct {
	Func        PtResult      // transport function result
	Driver      uint8         // raw driver error, 4 bits on the wire
	Ioctl       uint8         // raw ioctl error
	FwStatus    MailboxStatus // firmware mailbox status
	FwExtStatus MailboxStatus // firmware extended status
}

// Packed layout of the status word
var (
	PT_STATUS_FUNC          = u32field{offset: 0, bitwidth: 4}
	PT_STATUS_DRIVER        = u32field{offset: 4, bitwidth: 4}
	PT_STATUS_IOCTL         = u32field{offset: 8, bitwidth: 8}
	PT_STATUS_FW_STATUS     = u32field{offset: 16, bitwidth: 8}
	PT_STATUS_FW_EXT_STATUS = u32field{offset: 24, bitwidth: 8}
)

// StatusSuccess is the status of a fully successful exchange.
var StatusSuccess = CompositeStatus{}

// TransportStatus builds a status carrying only a passthrough function result.
func TransportStatus(r PtResult) CompositeStatus {
	return CompositeStatus{Func: r}
}

// FirmwareStatus builds a status carrying firmware mailbox and extended codes.
func FirmwareStatus(mb, ext MailboxStatus) CompositeStatus {
	return CompositeStatus{FwStatus: mb, FwExtStatus: ext}
}

func (s CompositeStatus) IsSuccess() bool {
	return s == StatusSuccess
}

// Word packs the status into its 32 bit diagnostic form.
func (s CompositeStatus) Word() uint32 {
	var w uint32
	PT_STATUS_FUNC.write(&w, uint32(s.Func))
	PT_STATUS_DRIVER.write(&w, uint32(s.Driver))
	PT_STATUS_IOCTL.write(&w, uint32(s.Ioctl))
	PT_STATUS_FW_STATUS.write(&w, uint32(s.FwStatus))
	PT_STATUS_FW_EXT_STATUS.write(&w, uint32(s.FwExtStatus))
	return w
}

// DecodeStatus unpacks a 32 bit status word.
func DecodeStatus(w uint32) CompositeStatus {
	return CompositeStatus{
		Func:        PtResult(PT_STATUS_FUNC.read(w)),
		Driver:      uint8(PT_STATUS_DRIVER.read(w)),
		Ioctl:       uint8(PT_STATUS_IOCTL.read(w)),
		FwStatus:    MailboxStatus(PT_STATUS_FW_STATUS.read(w)),
		FwExtStatus: MailboxStatus(PT_STATUS_FW_EXT_STATUS.read(w)),
	}
}

func (s CompositeStatus) String() string {
	return fmt.Sprintf("0x%08X", s.Word())
}

// Message renders every non zero status source on its own line.
func (s CompositeStatus) Message() string {
	var sb strings.Builder
	if s.Func != PT_SUCCESS {
		sb.WriteString(s.Func.String())
		sb.WriteString("\n")
	}
	if s.Driver != 0 {
		fmt.Fprintf(&sb, "\tDriver failed with error: 0x%x\n", s.Driver)
	}
	if s.Ioctl != 0 {
		fmt.Fprintf(&sb, "\tPassthrough IOCTL failed with error: 0x%x\n", s.Ioctl)
	}
	if s.FwStatus != MB_SUCCESS {
		fmt.Fprintf(&sb, "\tFW Status: 0x%x (%s)\n", uint8(s.FwStatus), s.FwStatus)
	}
	if s.FwExtStatus != MB_SUCCESS {
		fmt.Fprintf(&sb, "\tFW Extended Status: 0x%x (%s)\n", uint8(s.FwExtStatus), s.FwExtStatus)
	}
	return sb.String()
}

// Vendor specific DSM status codes reported by the platform firmware
const (
	DSM_VENDOR_SUCCESS           = 0x0000
	DSM_VENDOR_ERR_NOT_SUPPORTED = 0x0001
	DSM_VENDOR_ERR_NONEXISTING   = 0x0002
	DSM_VENDOR_INVALID_INPUT     = 0x0003
	DSM_VENDOR_HW_ERR            = 0x0004
	DSM_VENDOR_RETRY_SUGGESTED   = 0x0005
	DSM_VENDOR_UNKNOWN           = 0x0006
	DSM_VENDOR_SPECIFIC_ERR      = 0x0007
)

// Layout of the DSM status word
var (
	DSM_STATUS_CODE    = u32field{offset: 0, bitwidth: 16}
	DSM_MAILBOX_STATUS = u32field{offset: 16, bitwidth: 8}
)

// DecodeDsmStatus converts the status word of a vendor specific DSM call into a
// composite status.
func DecodeDsmStatus(raw uint32) CompositeStatus {
	switch DSM_STATUS_CODE.read(raw) {
	case DSM_VENDOR_SUCCESS:
		return StatusSuccess
	case DSM_VENDOR_ERR_NOT_SUPPORTED:
		return FirmwareStatus(MB_UNSUPPORTED_CMD, 0)
	case DSM_VENDOR_ERR_NONEXISTING:
		return TransportStatus(PT_ERR_BADDEVICE)
	case DSM_VENDOR_INVALID_INPUT:
		return FirmwareStatus(MB_INVALID_CMD_PARAM, 0)
	case DSM_VENDOR_HW_ERR:
		return FirmwareStatus(MB_INTERNAL_DEV_ERR, 0)
	case DSM_VENDOR_RETRY_SUGGESTED:
		return FirmwareStatus(MB_TIMED_OUT, 0)
	case DSM_VENDOR_SPECIFIC_ERR:
		return FirmwareStatus(MB_VENDOR_SPECIFIC_ERR, MailboxStatus(DSM_MAILBOX_STATUS.read(raw)))
	}
	return TransportStatus(PT_ERR_UNKNOWN)
}

type u32field struct {
	offset   int
	bitwidth int
}

func (u *u32field) mask() uint32 {
	return (1<<u.bitwidth - 1) << u.offset
}

func (u *u32field) read(reg uint32) uint32 {
	return (reg >> u.offset) & (1<<u.bitwidth - 1)
}

func (u *u32field) write(reg *uint32, val uint32) {
	*reg = (*reg &^ u.mask()) | ((val << u.offset) & u.mask())
}
