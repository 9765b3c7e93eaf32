// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the firmware command catalogue and the passthrough transport
package fis

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DeviceHandle is the NFIT device handle of a DIMM.
type DeviceHandle uint32

// CommandKind tells whether a command returns a response payload.
type CommandKind string

const (
	CMD_CALL  CommandKind = "call"  // status only
	CMD_ALLOC CommandKind = "alloc" // returns a decoded response
)

// Command identifies one firmware interface command.
type Command struct {
	Name        string
	Opcode      uint8
	SubOpcode   uint8
	Kind        CommandKind
	InputSize   int
	OutputSize  int
	LargeOutput int
}

// Code returns the 16 bit mailbox opcode (sub-opcode in the high byte).
func (c Command) Code() uint16 {
	return mailboxCode(c.Opcode, c.SubOpcode)
}

func mailboxCode(op, sub uint8) uint16 {
	return uint16(sub)<<8 | uint16(op)
}

// //////////////////////////////////////// Command catalogue

var (
	CMD_IDENTIFY_DIMM                      = Command{"identify_dimm", 0x01, 0x00, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_IDENTIFY_DIMM_CHARACTERISTICS      = Command{"identify_dimm_characteristics", 0x01, 0x01, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_GET_SECURITY_STATE                 = Command{"get_security_state", 0x02, 0x00, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_SET_PASSPHRASE                     = Command{"set_passphrase", 0x03, 0xF1, CMD_CALL, SMALL_PAYLOAD_SIZE, 0, 0}
	CMD_DISABLE_PASSPHRASE                 = Command{"disable_passphrase", 0x03, 0xF2, CMD_CALL, SMALL_PAYLOAD_SIZE, 0, 0}
	CMD_UNLOCK_UNIT                        = Command{"unlock_unit", 0x03, 0xF3, CMD_CALL, SMALL_PAYLOAD_SIZE, 0, 0}
	CMD_SECURE_ERASE                       = Command{"secure_erase", 0x03, 0xF5, CMD_CALL, SMALL_PAYLOAD_SIZE, 0, 0}
	CMD_FREEZE_LOCK                        = Command{"freeze_lock", 0x03, 0xF6, CMD_CALL, 0, 0, 0}
	CMD_GET_ALARM_THRESHOLD                = Command{"get_alarm_threshold", 0x04, 0x01, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_POWER_MANAGEMENT_POLICY            = Command{"power_management_policy", 0x04, 0x02, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_DIE_SPARING_POLICY                 = Command{"die_sparing_policy", 0x04, 0x03, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_ADDRESS_RANGE_SCRUB                = Command{"address_range_scrub", 0x04, 0x04, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_OPTIONAL_CONFIGURATION_DATA_POLICY = Command{"optional_configuration_data_policy", 0x04, 0x06, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_PMON_REGISTERS                     = Command{"pmon_registers", 0x04, 0x07, CMD_ALLOC, SMALL_PAYLOAD_SIZE, SMALL_PAYLOAD_SIZE, 0}
	CMD_SET_ALARM_THRESHOLD                = Command{"set_alarm_threshold", 0x05, 0x01, CMD_CALL, SMALL_PAYLOAD_SIZE, 0, 0}
	CMD_SYSTEM_TIME                        = Command{"system_time", 0x06, 0x00, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_PLATFORM_CONFIG_DATA               = Command{"platform_config_data", 0x06, 0x01, CMD_ALLOC, SMALL_PAYLOAD_SIZE, 0, PCD_SIZE}
	CMD_DIMM_PARTITION_INFO                = Command{"dimm_partition_info", 0x06, 0x02, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_FW_DEBUG_LOG_LEVEL                 = Command{"fw_debug_log_level", 0x06, 0x03, CMD_ALLOC, 1, SMALL_PAYLOAD_SIZE, 0}
	CMD_FW_LOAD_FLAG                       = Command{"fw_load_flag", 0x06, 0x04, CMD_ALLOC, 0, 1, 0}
	CMD_CONFIG_LOCKDOWN                    = Command{"config_lockdown", 0x06, 0x05, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_DDRT_IO_INIT_INFO                  = Command{"ddrt_io_init_info", 0x06, 0x06, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_GET_SUPPORTED_SKU_FEATURES         = Command{"get_supported_sku_features", 0x06, 0x07, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_ENABLE_DIMM                        = Command{"enable_dimm", 0x06, 0x08, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_SMART_HEALTH_INFO                  = Command{"smart_health_info", 0x08, 0x00, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_FIRMWARE_IMAGE_INFO                = Command{"firmware_image_info", 0x08, 0x01, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_FIRMWARE_DEBUG_LOG                 = Command{"firmware_debug_log", 0x08, 0x02, CMD_ALLOC, SMALL_PAYLOAD_SIZE, SMALL_PAYLOAD_SIZE, 0}
	CMD_LONG_OPERATION_STATUS              = Command{"long_operation_status", 0x08, 0x04, CMD_ALLOC, 0, SMALL_PAYLOAD_SIZE, 0}
	CMD_BSR                                = Command{"bsr", BIOS_EMULATED_COMMAND, SUBOP_GET_BOOT_STATUS, CMD_ALLOC, 0, 8, 0}
)

// Commands lists every supported command in opcode order.
var Commands = []Command{
	CMD_IDENTIFY_DIMM,
	CMD_IDENTIFY_DIMM_CHARACTERISTICS,
	CMD_GET_SECURITY_STATE,
	CMD_SET_PASSPHRASE,
	CMD_DISABLE_PASSPHRASE,
	CMD_UNLOCK_UNIT,
	CMD_SECURE_ERASE,
	CMD_FREEZE_LOCK,
	CMD_GET_ALARM_THRESHOLD,
	CMD_POWER_MANAGEMENT_POLICY,
	CMD_DIE_SPARING_POLICY,
	CMD_ADDRESS_RANGE_SCRUB,
	CMD_OPTIONAL_CONFIGURATION_DATA_POLICY,
	CMD_PMON_REGISTERS,
	CMD_SET_ALARM_THRESHOLD,
	CMD_SYSTEM_TIME,
	CMD_PLATFORM_CONFIG_DATA,
	CMD_DIMM_PARTITION_INFO,
	CMD_FW_DEBUG_LOG_LEVEL,
	CMD_FW_LOAD_FLAG,
	CMD_CONFIG_LOCKDOWN,
	CMD_DDRT_IO_INIT_INFO,
	CMD_GET_SUPPORTED_SKU_FEATURES,
	CMD_ENABLE_DIMM,
	CMD_SMART_HEALTH_INFO,
	CMD_FIRMWARE_IMAGE_INFO,
	CMD_FIRMWARE_DEBUG_LOG,
	CMD_LONG_OPERATION_STATUS,
	CMD_BSR,
}

// CommandByName looks a command up by its name, case insensitive.
func CommandByName(name string) (Command, bool) {
	for _, c := range Commands {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Command{}, false
}

// //////////////////////////////////////// Transport

// Request describes one passthrough exchange.
type Request struct {
	Handle          DeviceHandle
	Opcode          uint8
	SubOpcode       uint8
	Input           []byte // small input, at most SMALL_PAYLOAD_SIZE bytes
	OutputSize      int
	LargeInput      []byte
	LargeOutputSize int
}

// Response holds the raw bytes returned by a successful exchange.
type Response struct {
	Output      []byte
	LargeOutput []byte
}

// Transport moves one request to a DIMM and returns its raw response.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Response, CompositeStatus)
}

// Mailbox is one small payload exchange channel to a resolved DIMM.
type Mailbox interface {
	Exchange(ctx context.Context, opcode uint16, input []byte, outputSize int) ([]byte, CompositeStatus)
	Close() error
}

// MailboxResolver opens the mailbox of the DIMM behind a device handle.
type MailboxResolver interface {
	Resolve(ctx context.Context, handle DeviceHandle) (Mailbox, error)
}

// ErrBadDeviceHandle is returned by resolvers when no DIMM carries the handle.
var ErrBadDeviceHandle = errors.New("no dimm matches the device handle")

// Passthrough is the Transport sending requests through a platform mailbox.
// Handles are resolved again on every request.
type Passthrough struct {
	resolver MailboxResolver
}

func NewPassthrough(r MailboxResolver) *Passthrough {
	return &Passthrough{resolver: r}
}

// General passthrough command flow
func (p *Passthrough) Execute(ctx context.Context, req *Request) (*Response, CompositeStatus) {
	code := mailboxCode(req.Opcode, req.SubOpcode)

	//1. Resolve the handle to the DIMM mailbox
	mb, err := p.resolver.Resolve(ctx, req.Handle)
	if err != nil {
		klog.V(DBG_LVL_BASIC).InfoS("fis-mailbox.Execute resolve failed", "handle", hex(uint32(req.Handle)), "err", err)
		return nil, TransportStatus(PT_ERR_BADDEVICEHANDLE)
	}
	defer func() {
		if err := mb.Close(); err != nil {
			klog.V(DBG_LVL_INFO).InfoS("fis-mailbox.Execute close", "handle", hex(uint32(req.Handle)), "err", err)
		}
	}()

	//2. Write the large input payload before the command is submitted
	if len(req.LargeInput) != 0 {
		if st := writeLargePayload(ctx, mb, req.LargeInput); !st.IsSuccess() {
			return nil, st
		}
	}

	//3. Submit the small payload command
	klog.V(DBG_LVL_DETAIL).InfoS("fis-mailbox.Execute", "handle", hex(uint32(req.Handle)), "opcode", hex(code), "in", len(req.Input), "out", req.OutputSize)
	out, st := mb.Exchange(ctx, code, req.Input, req.OutputSize)
	if !st.IsSuccess() {
		klog.V(DBG_LVL_DETAIL).InfoS("fis-mailbox.Execute failed", "opcode", hex(code), "status", st.String())
		return nil, st
	}
	resp := &Response{Output: out}

	//4. Read the large output payload after a successful submit
	if req.LargeOutputSize != 0 {
		resp.LargeOutput, st = readLargePayload(ctx, mb, req.LargeOutputSize)
		if !st.IsSuccess() {
			return nil, st
		}
	}
	return resp, StatusSuccess
}
