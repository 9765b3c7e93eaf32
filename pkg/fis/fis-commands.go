// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the request encoding and invocation of every firmware command
package fis

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Invoker builds the wire request of a command and hands it to the transport.
type Invoker struct {
	transport Transport
}

func NewInvoker(t Transport) *Invoker {
	return &Invoker{transport: t}
}

// request builds the transfer descriptor of cmd. input is a wire structure or nil.
func (iv *Invoker) request(h DeviceHandle, cmd Command, input any) (*Request, error) {
	req := &Request{
		Handle:          h,
		Opcode:          cmd.Opcode,
		SubOpcode:       cmd.SubOpcode,
		OutputSize:      cmd.OutputSize,
		LargeOutputSize: cmd.LargeOutput,
	}
	if input != nil {
		b := structtoByte(input)
		if b == nil {
			return nil, errors.Errorf("fis-commands.request: cannot encode %s input", cmd.Name)
		}
		if len(b) > SMALL_PAYLOAD_SIZE {
			return nil, errors.Errorf("fis-commands.request: %s input is %d bytes", cmd.Name, len(b))
		}
		req.Input = fitPayload(b, cmd.InputSize)
	}
	return req, nil
}

// Invoke runs cmd and returns its raw response. The small output is zero extended to
// the command's output size. A failed status is returned untouched.
func (iv *Invoker) Invoke(ctx context.Context, h DeviceHandle, cmd Command, input any) (*Response, CompositeStatus, error) {
	req, err := iv.request(h, cmd, input)
	if err != nil {
		return nil, StatusSuccess, err
	}
	resp, st := iv.transport.Execute(ctx, req)
	if !st.IsSuccess() {
		klog.V(DBG_LVL_BASIC).InfoS("fis-commands.Invoke", "cmd", cmd.Name, "handle", hex(uint32(h)), "status", st.String())
		return nil, st, nil
	}
	if resp == nil {
		resp = &Response{}
	}
	if cmd.OutputSize != 0 {
		resp.Output = fitPayload(resp.Output, cmd.OutputSize)
	}
	if cmd.LargeOutput != 0 {
		resp.LargeOutput = fitPayload(resp.LargeOutput, cmd.LargeOutput)
	}
	return resp, st, nil
}

// //////////////////////////////////////// Request encoders

func encodeSetPassphrase(current, next string) SET_PASSPHRASE_INPUT {
	return SET_PASSPHRASE_INPUT{
		Current_Passphrase: passphraseField(current),
		New_Passphrase:     passphraseField(next),
	}
}

func encodePassphrase(current string) PASSPHRASE_INPUT {
	return PASSPHRASE_INPUT{Current_Passphrase: passphraseField(current)}
}

func encodePmonRegisters(mask uint16) PMON_REGISTERS_INPUT {
	return PMON_REGISTERS_INPUT{PMON_Retreive_Mask: mask}
}

func encodeSetAlarmThreshold(enable uint8, peakPowerBudget, avgPowerBudget uint16) SET_ALARM_THRESHOLD_INPUT {
	return SET_ALARM_THRESHOLD_INPUT{
		Enable:            enable,
		Peak_Power_Budget: peakPowerBudget,
		Avg_Power_Budget:  avgPowerBudget,
	}
}

func encodePlatformConfigData(partitionID, commandOption uint8, offset uint32) PLATFORM_CONFIG_DATA_INPUT {
	return PLATFORM_CONFIG_DATA_INPUT{
		Partition_ID:   partitionID,
		Command_Option: commandOption,
		Offset:         offset,
	}
}

func encodeFwDebugLogLevel(logID uint8) FW_DEBUG_LOG_LEVEL_INPUT {
	return FW_DEBUG_LOG_LEVEL_INPUT{Log_ID: logID}
}

func encodeFirmwareDebugLog(action uint8, pageOffset uint32, logID uint8) FIRMWARE_DEBUG_LOG_INPUT {
	return FIRMWARE_DEBUG_LOG_INPUT{
		Log_Action:      action,
		Log_Page_Offset: pageOffset,
		Log_ID:          logID,
	}
}
