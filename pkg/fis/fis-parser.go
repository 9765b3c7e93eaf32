// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the decoding of mailbox responses into application structures.
// Bit masks are exposed as their raw value plus one named field per documented bit.
package fis

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// decodeBits expands raw into the bit layout l.
func decodeBits[T any](raw any, l T) T {
	out, err := parseStruct(structtoByte(raw), l)
	if err != nil {
		klog.V(DBG_LVL_BASIC).InfoS("fis-parser.decodeBits", "err", err)
	}
	return out
}

// decodeWire copies b into the wire structure w, zero extending a short buffer.
func decodeWire[T any](b []byte, w T) (T, error) {
	out, err := parseStruct(fitPayload(b, wireSize(w)), w)
	if err != nil {
		return out, errors.Wrap(err, "fis-parser.decodeWire")
	}
	return out, nil
}

// //////////////////////////////////////// Bit masks

type FeatureSwRequiredMask struct {
	Raw                                          uint8
	InvalidateBeforeBlockRead                    bool
	ReadbackOfBwAddressRegisterRequiredBeforeUse bool
}

func decodeFeatureSwRequiredMask(raw uint8) FeatureSwRequiredMask {
	b := decodeBits(raw, FEATURE_SW_REQUIRED_MASK{})
	return FeatureSwRequiredMask{
		Raw:                       raw,
		InvalidateBeforeBlockRead: UintToBool(b.Invalidate_Before_Block_Read),
		ReadbackOfBwAddressRegisterRequiredBeforeUse: UintToBool(b.Readback_Of_BW_Address_Register_Required_Before_Use),
	}
}

type DimmSku struct {
	Raw                  uint32
	MemoryModeEnabled    bool
	StorageModeEnabled   bool
	AppDirectModeEnabled bool
	DieSparingCapable    bool
	SoftProgrammableSku  bool
	EncryptionEnabled    bool
}

func decodeDimmSku(raw uint32) DimmSku {
	b := decodeBits(raw, DIMM_SKU{})
	return DimmSku{
		Raw:                  raw,
		MemoryModeEnabled:    UintToBool(b.Memory_Mode_Enabled),
		StorageModeEnabled:   UintToBool(b.Storage_Mode_Enabled),
		AppDirectModeEnabled: UintToBool(b.App_Direct_Mode_Enabled),
		DieSparingCapable:    UintToBool(b.Die_Sparing_Capable),
		SoftProgrammableSku:  UintToBool(b.Soft_Programmable_SKU),
		EncryptionEnabled:    UintToBool(b.Encryption_Enabled),
	}
}

type SecurityState struct {
	Raw          uint8
	Enabled      bool
	Locked       bool
	Frozen       bool
	NotSupported bool
	CountExpired bool
}

func decodeSecurityState(raw uint8) SecurityState {
	b := decodeBits(raw, SECURITY_STATE{})
	return SecurityState{
		Raw:          raw,
		Enabled:      UintToBool(b.Enabled),
		Locked:       UintToBool(b.Locked),
		Frozen:       UintToBool(b.Frozen),
		NotSupported: UintToBool(b.Not_Supported),
		CountExpired: UintToBool(b.Count_Expired),
	}
}

type AlarmEnable struct {
	Raw            uint16
	SpareBlock     bool
	MediaTemp      bool
	ControllerTemp bool
}

func decodeAlarmEnable(raw uint16) AlarmEnable {
	b := decodeBits(raw, ALARM_THRESHOLD_ENABLE{})
	return AlarmEnable{
		Raw:            raw,
		SpareBlock:     UintToBool(b.Spare_Block),
		MediaTemp:      UintToBool(b.Media_Temp),
		ControllerTemp: UintToBool(b.Controller_Temp),
	}
}

type DieSparingSupported struct {
	Raw   uint8
	Rank0 bool
	Rank1 bool
	Rank2 bool
	Rank3 bool
}

func decodeDieSparingSupported(raw uint8) DieSparingSupported {
	b := decodeBits(raw, DIE_SPARING_SUPPORTED{})
	return DieSparingSupported{
		Raw:   raw,
		Rank0: UintToBool(b.Rank_0),
		Rank1: UintToBool(b.Rank_1),
		Rank2: UintToBool(b.Rank_2),
		Rank3: UintToBool(b.Rank_3),
	}
}

type SmartValidationFlags struct {
	Raw                    uint32
	HealthStatus           bool
	SpareBlocks            bool
	PercentUsed            bool
	MediaTemp              bool
	ControllerTemp         bool
	UnsafeShutdownCounter  bool
	AitDramStatus          bool
	AlarmTrips             bool
	LastShutdownStatus     bool
	VendorSpecificDataSize bool
}

func decodeSmartValidationFlags(raw uint32) SmartValidationFlags {
	b := decodeBits(raw, SMART_VALIDATION_FLAGS{})
	return SmartValidationFlags{
		Raw:                    raw,
		HealthStatus:           UintToBool(b.Health_Status),
		SpareBlocks:            UintToBool(b.Spare_Blocks),
		PercentUsed:            UintToBool(b.Percent_Used),
		MediaTemp:              UintToBool(b.Media_Temp),
		ControllerTemp:         UintToBool(b.Controller_Temp),
		UnsafeShutdownCounter:  UintToBool(b.Unsafe_Shutdown_Counter),
		AitDramStatus:          UintToBool(b.AIT_DRAM_Status),
		AlarmTrips:             UintToBool(b.Alarm_Trips),
		LastShutdownStatus:     UintToBool(b.Last_Shutdown_Status),
		VendorSpecificDataSize: UintToBool(b.Vendor_Specific_Data_Size),
	}
}

type HealthStatus struct {
	Raw         uint8
	Noncritical bool
	Critical    bool
	Fatal       bool
}

func decodeHealthStatus(raw uint8) HealthStatus {
	b := decodeBits(raw, HEALTH_STATUS{})
	return HealthStatus{
		Raw:         raw,
		Noncritical: UintToBool(b.Noncritical),
		Critical:    UintToBool(b.Critical),
		Fatal:       UintToBool(b.Fatal),
	}
}

type AlarmTrips struct {
	Raw                       uint8
	SpareBlockTrip            bool
	MediaTemperatureTrip      bool
	ControllerTemperatureTrip bool
}

func decodeAlarmTrips(raw uint8) AlarmTrips {
	b := decodeBits(raw, ALARM_TRIPS{})
	return AlarmTrips{
		Raw:                       raw,
		SpareBlockTrip:            UintToBool(b.Spare_Block_Trip),
		MediaTemperatureTrip:      UintToBool(b.Media_Temperature_Trip),
		ControllerTemperatureTrip: UintToBool(b.Controller_Temperature_Trip),
	}
}

type LastShutdownStatusDetails struct {
	Raw                          uint8
	PmAdrCommandReceived         bool
	PmS3Received                 bool
	PmS5Received                 bool
	DdrtPowerFailCommandReceived bool
	Pmic12vPowerFail             bool
	PmWarmResetReceived          bool
	ThermalShutdownReceived      bool
	FlushComplete                bool
}

func decodeLastShutdownStatusDetails(raw uint8) LastShutdownStatusDetails {
	b := decodeBits(raw, LAST_SHUTDOWN_STATUS_DETAILS{})
	return LastShutdownStatusDetails{
		Raw:                          raw,
		PmAdrCommandReceived:         UintToBool(b.PM_ADR_Command_Received),
		PmS3Received:                 UintToBool(b.PM_S3_Received),
		PmS5Received:                 UintToBool(b.PM_S5_Received),
		DdrtPowerFailCommandReceived: UintToBool(b.DDRT_Power_Fail_Command_Received),
		Pmic12vPowerFail:             UintToBool(b.PMIC_12V_Power_Fail),
		PmWarmResetReceived:          UintToBool(b.PM_Warm_Reset_Received),
		ThermalShutdownReceived:      UintToBool(b.Thermal_Shutdown_Received),
		FlushComplete:                UintToBool(b.Flush_Complete),
	}
}

type BsrRest1 struct {
	Raw                      uint32
	MediaReady1              bool
	MediaReady2              bool
	DdrtIoInitComplete       bool
	PcrLock                  bool
	MailboxReady             bool
	WatchDogStatus           bool
	FirstFastRefreshComplete bool
	CreditReady              bool
	MediaDisabled            bool
	OptInEnabled             bool
	OptInWasEnabled          bool
	Assertion                bool
	MiStall                  bool
	AitDramReady             bool
}

func decodeBsrRest1(raw uint32) BsrRest1 {
	b := decodeBits(raw, BSR_REST1{})
	return BsrRest1{
		Raw:                      raw,
		MediaReady1:              UintToBool(b.Media_Ready_1),
		MediaReady2:              UintToBool(b.Media_Ready_2),
		DdrtIoInitComplete:       UintToBool(b.DDRT_IO_Init_Complete),
		PcrLock:                  UintToBool(b.PCR_Lock),
		MailboxReady:             UintToBool(b.Mailbox_Ready),
		WatchDogStatus:           UintToBool(b.Watch_Dog_Status),
		FirstFastRefreshComplete: UintToBool(b.First_Fast_Refresh_Complete),
		CreditReady:              UintToBool(b.Credit_Ready),
		MediaDisabled:            UintToBool(b.Media_Disabled),
		OptInEnabled:             UintToBool(b.OPT_IN_Enabled),
		OptInWasEnabled:          UintToBool(b.OPT_IN_Was_Enabled),
		Assertion:                UintToBool(b.Assertion),
		MiStall:                  UintToBool(b.MI_Stall),
		AitDramReady:             UintToBool(b.AIT_DRAM_Ready),
	}
}

// //////////////////////////////////////// Decoded responses

type IdentifyDimm struct {
	VendorID                       uint16
	DeviceID                       uint16
	RevisionID                     uint16
	InterfaceFormatCode            uint16
	FirmwareRevision               string
	ReservedOldApi                 uint8
	FeatureSwRequiredMask          FeatureSwRequiredMask
	NumberOfBlockWindows           uint16
	OffsetOfBlockModeControlRegion uint32
	RawCapacity                    uint32
	Manufacturer                   uint16
	SerialNumber                   uint32
	PartNumber                     string
	DimmSku                        DimmSku
	InterfaceFormatCodeExtra       uint16
	ApiVer                         uint16
}

func parseIdentifyDimm(b []byte) (*IdentifyDimm, error) {
	w, err := decodeWire(b, IDENTIFY_DIMM_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &IdentifyDimm{
		VendorID:                       w.Vendor_ID,
		DeviceID:                       w.Device_ID,
		RevisionID:                     w.Revision_ID,
		InterfaceFormatCode:            w.Interface_Format_Code,
		FirmwareRevision:               fixedString(w.Firmware_Revision[:]),
		ReservedOldApi:                 w.Reserved_Old_API,
		FeatureSwRequiredMask:          decodeFeatureSwRequiredMask(w.Feature_SW_Required_Mask),
		NumberOfBlockWindows:           w.Number_Of_Block_Windows,
		OffsetOfBlockModeControlRegion: w.Offset_Of_Block_Mode_Control_Region,
		RawCapacity:                    w.Raw_Capacity,
		Manufacturer:                   w.Manufacturer,
		SerialNumber:                   w.Serial_Number,
		PartNumber:                     fixedString(w.Part_Number[:]),
		DimmSku:                        decodeDimmSku(w.Dimm_SKU),
		InterfaceFormatCodeExtra:       w.Interface_Format_Code_Extra,
		ApiVer:                         w.API_Ver,
	}, nil
}

type IdentifyDimmCharacteristics struct {
	ControllerTempShutdownThreshold uint16
	MediaTempShutdownThreshold      uint16
	ThrottlingStartThreshold        uint16
	ThrottlingStopThreshold         uint16
}

func parseIdentifyDimmCharacteristics(b []byte) (*IdentifyDimmCharacteristics, error) {
	w, err := decodeWire(b, IDENTIFY_DIMM_CHARACTERISTICS_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &IdentifyDimmCharacteristics{
		ControllerTempShutdownThreshold: w.Controller_Temp_Shutdown_Threshold,
		MediaTempShutdownThreshold:      w.Media_Temp_Shutdown_Threshold,
		ThrottlingStartThreshold:        w.Throttling_Start_Threshold,
		ThrottlingStopThreshold:         w.Throttling_Stop_Threshold,
	}, nil
}

type GetSecurityState struct {
	SecurityState SecurityState
}

func parseGetSecurityState(b []byte) (*GetSecurityState, error) {
	w, err := decodeWire(b, GET_SECURITY_STATE_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &GetSecurityState{SecurityState: decodeSecurityState(w.Security_State)}, nil
}

type AlarmThreshold struct {
	Enable                  AlarmEnable
	SpareBlockThreshold     uint8
	MediaTempThreshold      uint16
	ControllerTempThreshold uint16
}

func parseAlarmThreshold(b []byte) (*AlarmThreshold, error) {
	w, err := decodeWire(b, GET_ALARM_THRESHOLD_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &AlarmThreshold{
		Enable:                  decodeAlarmEnable(w.Enable),
		SpareBlockThreshold:     w.Spare_Block_Threshold,
		MediaTempThreshold:      w.Media_Temp_Threshold,
		ControllerTempThreshold: w.Controller_Temp_Threshold,
	}, nil
}

type PowerManagementPolicy struct {
	Enable             uint8
	PeakPowerBudget    uint16
	AveragePowerBudget uint16
	MaxPower           uint8
}

func parsePowerManagementPolicy(b []byte) (*PowerManagementPolicy, error) {
	w, err := decodeWire(b, POWER_MANAGEMENT_POLICY_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &PowerManagementPolicy{
		Enable:             w.Enable,
		PeakPowerBudget:    w.Peak_Power_Budget,
		AveragePowerBudget: w.Average_Power_Budget,
		MaxPower:           w.Max_Power,
	}, nil
}

type DieSparingPolicy struct {
	Enable         uint8
	Aggressiveness uint8
	Supported      DieSparingSupported
}

func parseDieSparingPolicy(b []byte) (*DieSparingPolicy, error) {
	w, err := decodeWire(b, DIE_SPARING_POLICY_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &DieSparingPolicy{
		Enable:         w.Enable,
		Aggressiveness: w.Aggressiveness,
		Supported:      decodeDieSparingSupported(w.Supported),
	}, nil
}

type AddressRangeScrub struct {
	Enable            uint8
	DpaStartAddress   uint64
	DpaEndAddress     uint64
	DpaCurrentAddress uint64
}

func parseAddressRangeScrub(b []byte) (*AddressRangeScrub, error) {
	w, err := decodeWire(b, ADDRESS_RANGE_SCRUB_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &AddressRangeScrub{
		Enable:            w.Enable,
		DpaStartAddress:   w.DPA_Start_Address,
		DpaEndAddress:     w.DPA_End_Address,
		DpaCurrentAddress: w.DPA_Current_Address,
	}, nil
}

type OptionalConfigurationDataPolicy struct {
	FirstFastRefresh   uint8
	ViralPolicyEnabled uint8
	ViralStatus        uint8
}

func parseOptionalConfigurationDataPolicy(b []byte) (*OptionalConfigurationDataPolicy, error) {
	w, err := decodeWire(b, OPTIONAL_CONFIGURATION_DATA_POLICY_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &OptionalConfigurationDataPolicy{
		FirstFastRefresh:   w.First_Fast_Refresh,
		ViralPolicyEnabled: w.Viral_Policy_Enabled,
		ViralStatus:        w.Viral_Status,
	}, nil
}

type PmonCounter struct {
	Counter uint32
	Control uint32
}

// PmonRegisters holds counters 0 to 11 followed by counter 14.
type PmonRegisters struct {
	PmonRetreiveMask uint16
	Pmon             [12]PmonCounter
	Pmon14           PmonCounter
}

func parsePmonRegisters(b []byte) (*PmonRegisters, error) {
	w, err := decodeWire(b, PMON_REGISTERS_OUTPUT{})
	if err != nil {
		return nil, err
	}
	p := &PmonRegisters{
		PmonRetreiveMask: w.PMON_Retreive_Mask,
		Pmon14:           PmonCounter{Counter: w.PMON_14.Counter, Control: w.PMON_14.Control},
	}
	for i, c := range w.PMON {
		p.Pmon[i] = PmonCounter{Counter: c.Counter, Control: c.Control}
	}
	return p, nil
}

type SystemTime struct {
	UnixTime uint64
}

func parseSystemTime(b []byte) (*SystemTime, error) {
	w, err := decodeWire(b, SYSTEM_TIME_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &SystemTime{UnixTime: w.Unix_Time}, nil
}

type DimmPartitionInfo struct {
	VolatileCapacity uint32
	VolatileStart    uint64
	PmCapacity       uint32
	PmStart          uint64
	RawCapacity      uint32
	EnabledCapacity  uint32
}

func parseDimmPartitionInfo(b []byte) (*DimmPartitionInfo, error) {
	w, err := decodeWire(b, DIMM_PARTITION_INFO_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &DimmPartitionInfo{
		VolatileCapacity: w.Volatile_Capacity,
		VolatileStart:    w.Volatile_Start,
		PmCapacity:       w.PM_Capacity,
		PmStart:          w.PM_Start,
		RawCapacity:      w.Raw_Capacity,
		EnabledCapacity:  w.Enabled_Capacity,
	}, nil
}

type FwDebugLogLevel struct {
	LogLevel uint8
	Logs     uint8
}

func parseFwDebugLogLevel(b []byte) (*FwDebugLogLevel, error) {
	w, err := decodeWire(b, FW_DEBUG_LOG_LEVEL_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &FwDebugLogLevel{LogLevel: w.Log_Level, Logs: w.Logs}, nil
}

type FwLoadFlag struct {
	LoadFlag uint8
}

func parseFwLoadFlag(b []byte) (*FwLoadFlag, error) {
	w, err := decodeWire(b, FW_LOAD_FLAG_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &FwLoadFlag{LoadFlag: w.Load_Flag}, nil
}

type ConfigLockdown struct {
	Locked uint8
}

func parseConfigLockdown(b []byte) (*ConfigLockdown, error) {
	w, err := decodeWire(b, CONFIG_LOCKDOWN_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &ConfigLockdown{Locked: w.Locked}, nil
}

type DdrtIoInitInfo struct {
	DdrtIoInfo           uint8
	DdrtTrainingComplete uint8
}

func parseDdrtIoInitInfo(b []byte) (*DdrtIoInitInfo, error) {
	w, err := decodeWire(b, DDRT_IO_INIT_INFO_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &DdrtIoInitInfo{DdrtIoInfo: w.DDRT_IO_Info, DdrtTrainingComplete: w.DDRT_Training_Complete}, nil
}

type SupportedSkuFeatures struct {
	DimmSku DimmSku
}

func parseSupportedSkuFeatures(b []byte) (*SupportedSkuFeatures, error) {
	w, err := decodeWire(b, GET_SUPPORTED_SKU_FEATURES_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &SupportedSkuFeatures{DimmSku: decodeDimmSku(w.Dimm_SKU)}, nil
}

type EnableDimm struct {
	Enable uint8
}

func parseEnableDimm(b []byte) (*EnableDimm, error) {
	w, err := decodeWire(b, ENABLE_DIMM_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &EnableDimm{Enable: w.Enable}, nil
}

type SmartHealthInfo struct {
	ValidationFlags           SmartValidationFlags
	HealthStatus              HealthStatus
	SpareBlocks               uint8
	PercentUsed               uint8
	AlarmTrips                AlarmTrips
	MediaTemp                 uint16
	ControllerTemp            uint16
	UnsafeShutdownCount       uint32
	AitDramStatus             uint8
	LastShutdownStatus        uint8
	VendorSpecificDataSize    uint32
	PowerCycles               uint64
	PowerOnTime               uint64
	Uptime                    uint64
	UnsafeShutdowns           uint32
	LastShutdownStatusDetails LastShutdownStatusDetails
	LastShutdownTime          uint64
}

func parseSmartHealthInfo(b []byte) (*SmartHealthInfo, error) {
	w, err := decodeWire(b, SMART_HEALTH_INFO_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &SmartHealthInfo{
		ValidationFlags:           decodeSmartValidationFlags(w.Validation_Flags),
		HealthStatus:              decodeHealthStatus(w.Health_Status),
		SpareBlocks:               w.Spare_Blocks,
		PercentUsed:               w.Percent_Used,
		AlarmTrips:                decodeAlarmTrips(w.Alarm_Trips),
		MediaTemp:                 w.Media_Temp,
		ControllerTemp:            w.Controller_Temp,
		UnsafeShutdownCount:       w.Unsafe_Shutdown_Count,
		AitDramStatus:             w.AIT_DRAM_Status,
		LastShutdownStatus:        w.Last_Shutdown_Status,
		VendorSpecificDataSize:    w.Vendor_Specific_Data_Size,
		PowerCycles:               w.Power_Cycles,
		PowerOnTime:               w.Power_On_Time,
		Uptime:                    w.Uptime,
		UnsafeShutdowns:           w.Unsafe_Shutdowns,
		LastShutdownStatusDetails: decodeLastShutdownStatusDetails(w.Last_Shutdown_Status_Details),
		LastShutdownTime:          w.Last_Shutdown_Time,
	}, nil
}

type FirmwareImageInfo struct {
	FirmwareRevision   string
	FirmwareType       uint8
	StagedFwRevision   string
	LastFwUpdateStatus uint8
	CommitID           string
	BuildConfiguration string
}

func parseFirmwareImageInfo(b []byte) (*FirmwareImageInfo, error) {
	w, err := decodeWire(b, FIRMWARE_IMAGE_INFO_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &FirmwareImageInfo{
		FirmwareRevision:   fixedString(w.Firmware_Revision[:]),
		FirmwareType:       w.Firmware_Type,
		StagedFwRevision:   fixedString(w.Staged_FW_Revision[:]),
		LastFwUpdateStatus: w.Last_FW_Update_Status,
		CommitID:           fixedString(w.Commit_ID[:]),
		BuildConfiguration: fixedString(w.Build_Configuration[:]),
	}, nil
}

type FirmwareDebugLog struct {
	LogSize uint8
}

func parseFirmwareDebugLog(b []byte) (*FirmwareDebugLog, error) {
	w, err := decodeWire(b, FIRMWARE_DEBUG_LOG_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &FirmwareDebugLog{LogSize: w.Log_Size}, nil
}

type LongOperationStatus struct {
	Command                   uint16
	PercentComplete           uint16
	EstimateTimeToCompletion  uint32
	StatusCode                uint8
	CommandSpecificReturnData []byte
}

func parseLongOperationStatus(b []byte) (*LongOperationStatus, error) {
	w, err := decodeWire(b, LONG_OPERATION_STATUS_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &LongOperationStatus{
		Command:                   w.Command,
		PercentComplete:           w.Percent_Complete,
		EstimateTimeToCompletion:  w.Estimate_Time_To_Completion,
		StatusCode:                w.Status_Code,
		CommandSpecificReturnData: append([]byte(nil), w.Command_Specific_Return_Data[:]...),
	}, nil
}

type Bsr struct {
	MajorCheckpoint uint8
	MinorCheckpoint uint8
	Rest1           BsrRest1
	Rest2           uint16
}

func parseBsr(b []byte) (*Bsr, error) {
	w, err := decodeWire(b, BSR_OUTPUT{})
	if err != nil {
		return nil, err
	}
	return &Bsr{
		MajorCheckpoint: w.Major_Checkpoint,
		MinorCheckpoint: w.Minor_Checkpoint,
		Rest1:           decodeBsrRest1(w.Rest1),
		Rest2:           w.Rest2,
	}, nil
}
