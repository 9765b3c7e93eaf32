// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the normalization of composite statuses into one return code
package fis

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind tells which layer a command failure came from.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindDriver
	KindTransport
	KindFirmware
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDriver:
		return "driver"
	case KindTransport:
		return "transport"
	case KindFirmware:
		return "firmware"
	case KindParse:
		return "parse"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ReturnCode is the unified result of a firmware command.
type ReturnCode int

const (
	Success ReturnCode = iota
	ErrUnknown
	ErrBadDevice
	ErrNoMemory
	ErrDriverFailed
	ErrBadSecurityState
	ErrDeviceBusy
	ErrInvalidPermissions
	ErrInvalidParameter
	ErrDataTransfer
	ErrDeviceError
	ErrNotSupported
	ErrBadPassphrase
	ErrBadFirmware
	ErrFwAlreadyStaged
	ErrParseFailed
)

var returnCodeText = map[ReturnCode]string{
	Success:               "success",
	ErrUnknown:            "unknown error",
	ErrBadDevice:          "bad device",
	ErrNoMemory:           "no memory",
	ErrDriverFailed:       "driver failed",
	ErrBadSecurityState:   "bad security state",
	ErrDeviceBusy:         "device busy",
	ErrInvalidPermissions: "invalid permissions",
	ErrInvalidParameter:   "invalid parameter",
	ErrDataTransfer:       "data transfer error",
	ErrDeviceError:        "device error",
	ErrNotSupported:       "not supported",
	ErrBadPassphrase:      "bad passphrase",
	ErrBadFirmware:        "bad firmware",
	ErrFwAlreadyStaged:    "firmware already staged",
	ErrParseFailed:        "response parse failed",
}

func (r ReturnCode) String() string {
	if s, ok := returnCodeText[r]; ok {
		return s
	}
	return fmt.Sprintf("return code %d", int(r))
}

// ParseCode is the result of decoding a response buffer.
type ParseCode int

const (
	PARSE_SUCCESS ParseCode = iota
	PARSING_WRONG_OFFSET
	PARSING_TYPE_NOT_FOUND
)

func (p ParseCode) String() string {
	switch p {
	case PARSE_SUCCESS:
		return "parse success"
	case PARSING_WRONG_OFFSET:
		return "wrong offset"
	case PARSING_TYPE_NOT_FOUND:
		return "type not found"
	}
	return fmt.Sprintf("parse code %d", int(p))
}

var transportReturnCode = map[PtResult]ReturnCode{
	PT_ERR_UNKNOWN:            ErrUnknown,
	PT_ERR_BADDEVICEHANDLE:    ErrBadDevice,
	PT_ERR_BADDEVICE:          ErrBadDevice,
	PT_ERR_NOMEMORY:           ErrNoMemory,
	PT_ERR_DRIVERFAILED:       ErrDriverFailed,
	PT_ERR_BADSECURITY:        ErrBadSecurityState,
	PT_ERR_DEVICEBUSY:         ErrDeviceBusy,
	PT_ERR_INVALIDPERMISSIONS: ErrInvalidPermissions,
}

var mailboxReturnCode = map[MailboxStatus]ReturnCode{
	MB_INVALID_CMD_PARAM:             ErrInvalidParameter,
	MB_DATA_XFER_ERR:                 ErrDataTransfer,
	MB_INTERNAL_DEV_ERR:              ErrDeviceError,
	MB_UNSUPPORTED_CMD:               ErrNotSupported,
	MB_DEVICE_BUSY:                   ErrDeviceBusy,
	MB_INVALID_CREDENTIAL:            ErrBadPassphrase,
	MB_SECURITY_CHK_FAIL:             ErrBadFirmware,
	MB_INVALID_SECURITY_STATE:        ErrBadSecurityState,
	MB_SYSTEM_TIME_NOT_SET:           ErrDeviceError,
	MB_DATA_NOT_SET:                  ErrDeviceError,
	MB_ABORTED:                       ErrDeviceError,
	MB_NO_NEW_FW:                     ErrBadFirmware,
	MB_REVISION_FAILURE:              ErrBadFirmware,
	MB_INJECTION_DISABLED:            ErrNotSupported,
	MB_CONFIG_LOCKED_COMMAND_INVALID: ErrNotSupported,
	MB_INVALID_ALIGNMENT:             ErrDeviceError,
	MB_INCOMPATIBLE_DIMM:             ErrNotSupported,
	MB_TIMED_OUT:                     ErrDeviceBusy,
	MB_MEDIA_DISABLED:                ErrDeviceError,
	MB_FW_UPDATE_ALREADY_OCCURED:     ErrFwAlreadyStaged,
	MB_NO_RESOURCES_AVAILABLE:        ErrDeviceError,
}

func mailboxToReturnCode(mb MailboxStatus) ReturnCode {
	if rc, ok := mailboxReturnCode[mb]; ok {
		return rc
	}
	return ErrDeviceError
}

// Normalize collapses a composite status into one return code.
// Precedence: driver, transport, firmware mailbox, firmware extended status.
func Normalize(s CompositeStatus) (ErrorKind, ReturnCode) {
	if s.Driver != 0 {
		return KindDriver, ErrDriverFailed
	}
	if s.Func != PT_SUCCESS {
		if rc, ok := transportReturnCode[s.Func]; ok {
			return KindTransport, rc
		}
		return KindTransport, ErrUnknown
	}
	if s.Ioctl != 0 {
		return KindTransport, ErrDriverFailed
	}
	return normalizeFirmware(s.FwStatus, s.FwExtStatus)
}

func normalizeFirmware(mb, ext MailboxStatus) (ErrorKind, ReturnCode) {
	switch {
	case mb == MB_VENDOR_SPECIFIC_ERR:
		if ext == MB_SUCCESS {
			// vendor failure without a firmware code
			return KindFirmware, ErrDeviceError
		}
		return KindFirmware, mailboxToReturnCode(ext)
	case mb != MB_SUCCESS:
		return KindFirmware, mailboxToReturnCode(mb)
	case ext != MB_SUCCESS:
		return KindFirmware, mailboxToReturnCode(ext)
	}
	return KindNone, Success
}

// CommandError is the failure of one firmware command.
type CommandError struct {
	Command   string
	Kind      ErrorKind
	Code      ReturnCode
	Status    CompositeStatus
	ParseCode ParseCode
}

func (e *CommandError) Error() string {
	if e.Kind == KindParse {
		return fmt.Sprintf("%s: %s: %s", e.Command, e.Code, e.ParseCode)
	}
	return fmt.Sprintf("%s: %s (%s error, status %s)", e.Command, e.Code, e.Kind, e.Status)
}

// statusError returns nil for a successful status and a *CommandError otherwise.
func statusError(cmd string, s CompositeStatus) error {
	kind, rc := Normalize(s)
	if rc == Success {
		return nil
	}
	return &CommandError{Command: cmd, Kind: kind, Code: rc, Status: s}
}

func parseError(cmd string, p ParseCode) error {
	return &CommandError{Command: cmd, Kind: KindParse, Code: ErrParseFailed, ParseCode: p}
}

// ReturnCodeOf extracts the unified return code carried by err.
func ReturnCodeOf(err error) ReturnCode {
	if err == nil {
		return Success
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrUnknown
}

// ParseCodeOf extracts the parser result carried by err.
func ParseCodeOf(err error) ParseCode {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.ParseCode
	}
	return PARSE_SUCCESS
}
