// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the command facade: one method per firmware command
package fis

import (
	"context"

	"github.com/pkg/errors"
)

// Client runs firmware commands against DIMMs through the injected transport.
// A Client holds no per device state. Callers serialize commands sent to one DIMM.
type Client struct {
	invoker *Invoker
}

func NewClient(t Transport) *Client {
	return &Client{invoker: NewInvoker(t)}
}

// call runs a command that only reports a status.
func (c *Client) call(ctx context.Context, h DeviceHandle, cmd Command, input any) error {
	_, st, err := c.invoker.Invoke(ctx, h, cmd, input)
	if err != nil {
		return errors.Wrap(err, cmd.Name)
	}
	return statusError(cmd.Name, st)
}

// fetch runs a command and decodes its small output with parse.
func fetch[T any](ctx context.Context, c *Client, h DeviceHandle, cmd Command, input any, parse func([]byte) (*T, error)) (*T, error) {
	resp, st, err := c.invoker.Invoke(ctx, h, cmd, input)
	if err != nil {
		return nil, errors.Wrap(err, cmd.Name)
	}
	if err := statusError(cmd.Name, st); err != nil {
		return nil, err
	}
	out, err := parse(resp.Output)
	if err != nil {
		return nil, errors.Wrap(err, cmd.Name)
	}
	return out, nil
}

func (c *Client) IdentifyDimm(ctx context.Context, h DeviceHandle) (*IdentifyDimm, error) {
	return fetch(ctx, c, h, CMD_IDENTIFY_DIMM, nil, parseIdentifyDimm)
}

func (c *Client) IdentifyDimmCharacteristics(ctx context.Context, h DeviceHandle) (*IdentifyDimmCharacteristics, error) {
	return fetch(ctx, c, h, CMD_IDENTIFY_DIMM_CHARACTERISTICS, nil, parseIdentifyDimmCharacteristics)
}

func (c *Client) GetSecurityState(ctx context.Context, h DeviceHandle) (*GetSecurityState, error) {
	return fetch(ctx, c, h, CMD_GET_SECURITY_STATE, nil, parseGetSecurityState)
}

// SetPassphrase changes the passphrase. Both passphrases are cut or zero padded to 32 bytes.
func (c *Client) SetPassphrase(ctx context.Context, h DeviceHandle, current, next string) error {
	return c.call(ctx, h, CMD_SET_PASSPHRASE, encodeSetPassphrase(current, next))
}

func (c *Client) DisablePassphrase(ctx context.Context, h DeviceHandle, current string) error {
	return c.call(ctx, h, CMD_DISABLE_PASSPHRASE, encodePassphrase(current))
}

func (c *Client) UnlockUnit(ctx context.Context, h DeviceHandle, current string) error {
	return c.call(ctx, h, CMD_UNLOCK_UNIT, encodePassphrase(current))
}

// SecureErase erases the DIMM media. It is sent exactly once.
func (c *Client) SecureErase(ctx context.Context, h DeviceHandle, current string) error {
	return c.call(ctx, h, CMD_SECURE_ERASE, encodePassphrase(current))
}

func (c *Client) FreezeLock(ctx context.Context, h DeviceHandle) error {
	return c.call(ctx, h, CMD_FREEZE_LOCK, nil)
}

func (c *Client) GetAlarmThreshold(ctx context.Context, h DeviceHandle) (*AlarmThreshold, error) {
	return fetch(ctx, c, h, CMD_GET_ALARM_THRESHOLD, nil, parseAlarmThreshold)
}

func (c *Client) PowerManagementPolicy(ctx context.Context, h DeviceHandle) (*PowerManagementPolicy, error) {
	return fetch(ctx, c, h, CMD_POWER_MANAGEMENT_POLICY, nil, parsePowerManagementPolicy)
}

func (c *Client) DieSparingPolicy(ctx context.Context, h DeviceHandle) (*DieSparingPolicy, error) {
	return fetch(ctx, c, h, CMD_DIE_SPARING_POLICY, nil, parseDieSparingPolicy)
}

func (c *Client) AddressRangeScrub(ctx context.Context, h DeviceHandle) (*AddressRangeScrub, error) {
	return fetch(ctx, c, h, CMD_ADDRESS_RANGE_SCRUB, nil, parseAddressRangeScrub)
}

func (c *Client) OptionalConfigurationDataPolicy(ctx context.Context, h DeviceHandle) (*OptionalConfigurationDataPolicy, error) {
	return fetch(ctx, c, h, CMD_OPTIONAL_CONFIGURATION_DATA_POLICY, nil, parseOptionalConfigurationDataPolicy)
}

func (c *Client) PmonRegisters(ctx context.Context, h DeviceHandle, mask uint16) (*PmonRegisters, error) {
	return fetch(ctx, c, h, CMD_PMON_REGISTERS, encodePmonRegisters(mask), parsePmonRegisters)
}

func (c *Client) SetAlarmThreshold(ctx context.Context, h DeviceHandle, enable uint8, peakPowerBudget, avgPowerBudget uint16) error {
	return c.call(ctx, h, CMD_SET_ALARM_THRESHOLD, encodeSetAlarmThreshold(enable, peakPowerBudget, avgPowerBudget))
}

func (c *Client) SystemTime(ctx context.Context, h DeviceHandle) (*SystemTime, error) {
	return fetch(ctx, c, h, CMD_SYSTEM_TIME, nil, parseSystemTime)
}

// PlatformConfigData reads a platform config data partition through the large payload.
func (c *Client) PlatformConfigData(ctx context.Context, h DeviceHandle, partitionID, commandOption uint8, offset uint32) (*PlatformConfigData, error) {
	cmd := CMD_PLATFORM_CONFIG_DATA
	resp, st, err := c.invoker.Invoke(ctx, h, cmd, encodePlatformConfigData(partitionID, commandOption, offset))
	if err != nil {
		return nil, errors.Wrap(err, cmd.Name)
	}
	if err := statusError(cmd.Name, st); err != nil {
		return nil, err
	}
	pcd, rc := parsePlatformConfigData(resp.LargeOutput)
	if rc != PARSE_SUCCESS {
		return nil, parseError(cmd.Name, rc)
	}
	return pcd, nil
}

func (c *Client) DimmPartitionInfo(ctx context.Context, h DeviceHandle) (*DimmPartitionInfo, error) {
	return fetch(ctx, c, h, CMD_DIMM_PARTITION_INFO, nil, parseDimmPartitionInfo)
}

func (c *Client) FwDebugLogLevel(ctx context.Context, h DeviceHandle, logID uint8) (*FwDebugLogLevel, error) {
	return fetch(ctx, c, h, CMD_FW_DEBUG_LOG_LEVEL, encodeFwDebugLogLevel(logID), parseFwDebugLogLevel)
}

func (c *Client) FwLoadFlag(ctx context.Context, h DeviceHandle) (*FwLoadFlag, error) {
	return fetch(ctx, c, h, CMD_FW_LOAD_FLAG, nil, parseFwLoadFlag)
}

func (c *Client) ConfigLockdown(ctx context.Context, h DeviceHandle) (*ConfigLockdown, error) {
	return fetch(ctx, c, h, CMD_CONFIG_LOCKDOWN, nil, parseConfigLockdown)
}

func (c *Client) DdrtIoInitInfo(ctx context.Context, h DeviceHandle) (*DdrtIoInitInfo, error) {
	return fetch(ctx, c, h, CMD_DDRT_IO_INIT_INFO, nil, parseDdrtIoInitInfo)
}

func (c *Client) GetSupportedSkuFeatures(ctx context.Context, h DeviceHandle) (*SupportedSkuFeatures, error) {
	return fetch(ctx, c, h, CMD_GET_SUPPORTED_SKU_FEATURES, nil, parseSupportedSkuFeatures)
}

func (c *Client) EnableDimm(ctx context.Context, h DeviceHandle) (*EnableDimm, error) {
	return fetch(ctx, c, h, CMD_ENABLE_DIMM, nil, parseEnableDimm)
}

func (c *Client) SmartHealthInfo(ctx context.Context, h DeviceHandle) (*SmartHealthInfo, error) {
	return fetch(ctx, c, h, CMD_SMART_HEALTH_INFO, nil, parseSmartHealthInfo)
}

func (c *Client) FirmwareImageInfo(ctx context.Context, h DeviceHandle) (*FirmwareImageInfo, error) {
	return fetch(ctx, c, h, CMD_FIRMWARE_IMAGE_INFO, nil, parseFirmwareImageInfo)
}

func (c *Client) FirmwareDebugLog(ctx context.Context, h DeviceHandle, action uint8, pageOffset uint32, logID uint8) (*FirmwareDebugLog, error) {
	return fetch(ctx, c, h, CMD_FIRMWARE_DEBUG_LOG, encodeFirmwareDebugLog(action, pageOffset, logID), parseFirmwareDebugLog)
}

func (c *Client) LongOperationStatus(ctx context.Context, h DeviceHandle) (*LongOperationStatus, error) {
	return fetch(ctx, c, h, CMD_LONG_OPERATION_STATUS, nil, parseLongOperationStatus)
}

func (c *Client) Bsr(ctx context.Context, h DeviceHandle) (*Bsr, error) {
	return fetch(ctx, c, h, CMD_BSR, nil, parseBsr)
}

// Run executes the command named name with default parameters and returns its decoded
// result, or nil for status only commands. Commands that need a passphrase take it from
// args in order.
func (c *Client) Run(ctx context.Context, h DeviceHandle, name string, args ...string) (any, error) {
	cmd, ok := CommandByName(name)
	if !ok {
		return nil, errors.Errorf("unknown command %q", name)
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch cmd {
	case CMD_IDENTIFY_DIMM:
		return c.IdentifyDimm(ctx, h)
	case CMD_IDENTIFY_DIMM_CHARACTERISTICS:
		return c.IdentifyDimmCharacteristics(ctx, h)
	case CMD_GET_SECURITY_STATE:
		return c.GetSecurityState(ctx, h)
	case CMD_SET_PASSPHRASE:
		return nil, c.SetPassphrase(ctx, h, arg(0), arg(1))
	case CMD_DISABLE_PASSPHRASE:
		return nil, c.DisablePassphrase(ctx, h, arg(0))
	case CMD_UNLOCK_UNIT:
		return nil, c.UnlockUnit(ctx, h, arg(0))
	case CMD_SECURE_ERASE:
		return nil, c.SecureErase(ctx, h, arg(0))
	case CMD_FREEZE_LOCK:
		return nil, c.FreezeLock(ctx, h)
	case CMD_GET_ALARM_THRESHOLD:
		return c.GetAlarmThreshold(ctx, h)
	case CMD_POWER_MANAGEMENT_POLICY:
		return c.PowerManagementPolicy(ctx, h)
	case CMD_DIE_SPARING_POLICY:
		return c.DieSparingPolicy(ctx, h)
	case CMD_ADDRESS_RANGE_SCRUB:
		return c.AddressRangeScrub(ctx, h)
	case CMD_OPTIONAL_CONFIGURATION_DATA_POLICY:
		return c.OptionalConfigurationDataPolicy(ctx, h)
	case CMD_PMON_REGISTERS:
		return c.PmonRegisters(ctx, h, 0)
	case CMD_SYSTEM_TIME:
		return c.SystemTime(ctx, h)
	case CMD_PLATFORM_CONFIG_DATA:
		return c.PlatformConfigData(ctx, h, 1, 0, 0)
	case CMD_DIMM_PARTITION_INFO:
		return c.DimmPartitionInfo(ctx, h)
	case CMD_FW_DEBUG_LOG_LEVEL:
		return c.FwDebugLogLevel(ctx, h, 0)
	case CMD_FW_LOAD_FLAG:
		return c.FwLoadFlag(ctx, h)
	case CMD_CONFIG_LOCKDOWN:
		return c.ConfigLockdown(ctx, h)
	case CMD_DDRT_IO_INIT_INFO:
		return c.DdrtIoInitInfo(ctx, h)
	case CMD_GET_SUPPORTED_SKU_FEATURES:
		return c.GetSupportedSkuFeatures(ctx, h)
	case CMD_ENABLE_DIMM:
		return c.EnableDimm(ctx, h)
	case CMD_SMART_HEALTH_INFO:
		return c.SmartHealthInfo(ctx, h)
	case CMD_FIRMWARE_IMAGE_INFO:
		return c.FirmwareImageInfo(ctx, h)
	case CMD_FIRMWARE_DEBUG_LOG:
		return c.FirmwareDebugLog(ctx, h, 0, 0, 0)
	case CMD_LONG_OPERATION_STATUS:
		return c.LongOperationStatus(ctx, h)
	case CMD_BSR:
		return c.Bsr(ctx, h)
	}
	return nil, errors.Errorf("command %q needs parameters", name)
}
