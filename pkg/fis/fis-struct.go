// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file holds the packed mailbox payload structures of the NVDIMM firmware interface.
// Every field offset is part of the firmware contract. Reserved regions are explicit.
package fis

const (
	SMALL_PAYLOAD_SIZE = 128 // bytes, small mailbox input and output
	PASSPHRASE_LEN     = 32  // bytes, fixed width passphrase field
	PCD_HEADER_SIZE    = 60
	PCD_BODY_SIZE      = 131013
	PCD_SIZE           = PCD_HEADER_SIZE + PCD_BODY_SIZE
)

// Large payload side channel
const (
	BIOS_EMULATED_COMMAND           = 0xFD
	SUBOP_GET_PAYLOAD_SIZE          = 0x00
	SUBOP_WRITE_LARGE_PAYLOAD_INPUT = 0x01
	SUBOP_READ_LARGE_PAYLOAD_OUTPUT = 0x02
	SUBOP_GET_BOOT_STATUS           = 0x03
)

type PAYLOAD_SIZE_OUTPUT struct {
	Large_Input_Payload_Size  uint32
	Large_Output_Payload_Size uint32
	RW_Size                   uint32
}

type LARGE_PAYLOAD_CHUNK_HEADER struct {
	Size   uint32
	Offset uint32
}

////////////////////////////////////////// Mailbox payload structures

type IDENTIFY_DIMM_OUTPUT struct {
	Vendor_ID                           uint16
	Device_ID                           uint16
	Revision_ID                         uint16
	Interface_Format_Code               uint16
	Firmware_Revision                   [5]byte
	Reserved_Old_API                    uint8
	Feature_SW_Required_Mask            uint8
	Reserved1                           uint8
	Number_Of_Block_Windows             uint16
	Reserved2                           [10]uint8
	Offset_Of_Block_Mode_Control_Region uint32
	Raw_Capacity                        uint32
	Manufacturer                        uint16
	Serial_Number                       uint32
	Part_Number                         [20]byte
	Dimm_SKU                            uint32
	Interface_Format_Code_Extra         uint16
	API_Ver                             uint16
	Reserved3                           [58]uint8
}

type IDENTIFY_DIMM_CHARACTERISTICS_OUTPUT struct {
	Controller_Temp_Shutdown_Threshold uint16
	Media_Temp_Shutdown_Threshold      uint16
	Throttling_Start_Threshold         uint16
	Throttling_Stop_Threshold          uint16
	Reserved                           [120]uint8
}

type GET_SECURITY_STATE_OUTPUT struct {
	Security_State uint8
	Reserved       [127]uint8
}

type SET_PASSPHRASE_INPUT struct {
	Current_Passphrase [PASSPHRASE_LEN]byte
	Reserved1          [32]uint8
	New_Passphrase     [PASSPHRASE_LEN]byte
	Reserved2          [32]uint8
}

// Shared by disable passphrase, unlock unit and secure erase.
type PASSPHRASE_INPUT struct {
	Current_Passphrase [PASSPHRASE_LEN]byte
	Reserved           [96]uint8
}

type GET_ALARM_THRESHOLD_OUTPUT struct {
	Enable                    uint16
	Spare_Block_Threshold     uint8
	Media_Temp_Threshold      uint16
	Controller_Temp_Threshold uint16
	Reserved                  [121]uint8
}

type POWER_MANAGEMENT_POLICY_OUTPUT struct {
	Enable               uint8
	Peak_Power_Budget    uint16
	Average_Power_Budget uint16
	Max_Power            uint8
	Reserved             [122]uint8
}

type DIE_SPARING_POLICY_OUTPUT struct {
	Enable         uint8
	Aggressiveness uint8
	Supported      uint8
	Reserved       [125]uint8
}

type ADDRESS_RANGE_SCRUB_OUTPUT struct {
	Enable              uint8
	Reserved1           [3]uint8
	DPA_Start_Address   uint64
	DPA_End_Address     uint64
	DPA_Current_Address uint64
	Reserved2           [100]uint8
}

type OPTIONAL_CONFIGURATION_DATA_POLICY_OUTPUT struct {
	First_Fast_Refresh   uint8
	Viral_Policy_Enabled uint8
	Viral_Status         uint8
	Reserved             [125]uint8
}

type PMON_COUNTER struct {
	Counter uint32
	Control uint32
}

type PMON_REGISTERS_OUTPUT struct {
	PMON_Retreive_Mask uint16
	Reserved1          [6]uint8
	PMON               [12]PMON_COUNTER // pmon 0 to 11
	Reserved2          [4]uint32
	PMON_14            PMON_COUNTER
}

type PMON_REGISTERS_INPUT struct {
	PMON_Retreive_Mask uint16
	Reserved           [126]uint8
}

type SET_ALARM_THRESHOLD_INPUT struct {
	Enable            uint8
	Peak_Power_Budget uint16
	Avg_Power_Budget  uint16
	Reserved          [123]uint8
}

type SYSTEM_TIME_OUTPUT struct {
	Unix_Time uint64
	Reserved  [120]uint8
}

type PLATFORM_CONFIG_DATA_INPUT struct {
	Partition_ID   uint8
	Command_Option uint8
	Offset         uint32
	Reserved       [122]uint8
}

// Header of the platform config data large output. The body follows up to PCD_SIZE.
type PLATFORM_CONFIG_DATA_HEADER struct {
	Signature             [4]byte
	Length                uint32
	Revision              uint8
	Checksum              uint8
	OEM_ID                [6]byte
	OEM_Table_ID          [8]byte
	OEM_Revision          uint32
	Creator_ID            uint32
	Creator_Revision      uint32
	Current_Config_Size   uint32
	Current_Config_Offset uint32
	Input_Config_Size     uint32
	Input_Config_Offset   uint32
	Output_Config_Size    uint32
	Output_Config_Offset  uint32
}

// Common header of the current, input and output config tables
type CONFIG_TABLE_HEADER struct {
	Signature        [4]byte
	Length           uint32
	Revision         uint8
	Checksum         uint8
	OEM_ID           [6]byte
	OEM_Table_ID     [8]byte
	OEM_Revision     uint32
	Creator_ID       uint32
	Creator_Revision uint32
}

type CURRENT_CONFIG_TABLE struct {
	Header                 CONFIG_TABLE_HEADER
	Config_Status          uint16
	Reserved               uint16
	Volatile_Memory_Size   uint64
	Persistent_Memory_Size uint64
}

type INPUT_CONFIG_TABLE struct {
	Header          CONFIG_TABLE_HEADER
	Sequence_Number uint32
	Reserved        uint64
}

type OUTPUT_CONFIG_TABLE struct {
	Header            CONFIG_TABLE_HEADER
	Sequence_Number   uint32
	Validation_Status uint8
	Reserved          [7]uint8
}

// Type tags of the records carried in the config table bodies
const (
	PCD_PARTITION_SIZE_CHANGE_TABLE_TYPE = 4
	PCD_INTERLEAVE_INFORMATION_TABLE     = 5
)

// Leading fields shared by every type tagged config table record
type PCD_TABLE_RECORD_HEADER struct {
	Type   uint16
	Length uint16
}

type INTERLEAVE_INFORMATION_TABLE struct {
	Type            uint16
	Length          uint16
	Index           uint16
	Number_Of_Dimms uint8
	Memory_Type     uint8
	Format          uint32
	Mirror_Enabled  uint8
	Change_Status   uint8
	Memory_Spare    uint8
	Reserved        [9]uint8
}

type ID_INFO_TABLE struct {
	Device_Identification [32]byte
	Partition_Offset      uint64
	Partition_Size        uint64
}

type DEVICE_IDENTIFICATION_V1 struct {
	Manufacturer_ID uint16
	Serial_Number   uint32
	Model_Number    [20]byte
	Reserved        [6]uint8
}

type DEVICE_IDENTIFICATION_V2 struct {
	UID      [9]byte
	Reserved [23]uint8
}

type PARTITION_SIZE_CHANGE_TABLE struct {
	Type                             uint16
	Length                           uint16
	Partition_Size_Change_Status     uint32
	Persistent_Memory_Partition_Size uint64
}

type DIMM_PARTITION_INFO_OUTPUT struct {
	Volatile_Capacity uint32
	Reserved0         uint32
	Volatile_Start    uint64
	PM_Capacity       uint32
	Reserved1         uint32
	PM_Start          uint64
	Raw_Capacity      uint32
	Enabled_Capacity  uint32
	Reserved2         [88]uint8
}

type FW_DEBUG_LOG_LEVEL_INPUT struct {
	Log_ID uint8
}

type FW_DEBUG_LOG_LEVEL_OUTPUT struct {
	Log_Level uint8
	Logs      uint8
	Reserved  [126]uint8
}

type FW_LOAD_FLAG_OUTPUT struct {
	Load_Flag uint8
}

type CONFIG_LOCKDOWN_OUTPUT struct {
	Locked   uint8
	Reserved [127]uint8
}

type DDRT_IO_INIT_INFO_OUTPUT struct {
	DDRT_IO_Info           uint8
	DDRT_Training_Complete uint8
	Reserved               [126]uint8
}

type GET_SUPPORTED_SKU_FEATURES_OUTPUT struct {
	Dimm_SKU uint32
	Reserved [124]uint8
}

type ENABLE_DIMM_OUTPUT struct {
	Enable   uint8
	Reserved [127]uint8
}

type SMART_HEALTH_INFO_OUTPUT struct {
	Validation_Flags             uint32
	Reserved0                    uint32
	Health_Status                uint8
	Spare_Blocks                 uint8
	Percent_Used                 uint8
	Alarm_Trips                  uint8
	Media_Temp                   uint16
	Controller_Temp              uint16
	Unsafe_Shutdown_Count        uint32
	AIT_DRAM_Status              uint8
	Reserved1                    [10]uint8
	Last_Shutdown_Status         uint8
	Vendor_Specific_Data_Size    uint32
	Power_Cycles                 uint64
	Power_On_Time                uint64
	Uptime                       uint64
	Unsafe_Shutdowns             uint32
	Last_Shutdown_Status_Details uint8
	Last_Shutdown_Time           uint64
	Reserved2                    [55]uint8
}

type FIRMWARE_IMAGE_INFO_OUTPUT struct {
	Firmware_Revision     [5]byte
	Firmware_Type         uint8
	Reserved0             [10]uint8
	Staged_FW_Revision    [5]byte
	Reserved1             uint8
	Last_FW_Update_Status uint8
	Reserved2             [9]uint8
	Commit_ID             [40]byte
	Build_Configuration   [16]byte
	Reserved3             [40]uint8
}

type FIRMWARE_DEBUG_LOG_INPUT struct {
	Log_Action      uint8
	Log_Page_Offset uint32
	Log_ID          uint8
	Reserved        [122]uint8
}

type FIRMWARE_DEBUG_LOG_OUTPUT struct {
	Log_Size uint8
	Reserved [127]uint8
}

type LONG_OPERATION_STATUS_OUTPUT struct {
	Command                      uint16
	Percent_Complete             uint16
	Estimate_Time_To_Completion  uint32
	Status_Code                  uint8
	Command_Specific_Return_Data [119]uint8
}

type BSR_OUTPUT struct {
	Major_Checkpoint uint8
	Minor_Checkpoint uint8
	Rest1            uint32
	Rest2            uint16
}

////////////////////////////////////////// Bit layouts of bitmask fields, least significant bit first

type FEATURE_SW_REQUIRED_MASK struct {
	Invalidate_Before_Block_Read                        bitfield_1b
	Readback_Of_BW_Address_Register_Required_Before_Use bitfield_1b
	Reserved                                            bitfield_6b
}

type DIMM_SKU struct {
	Memory_Mode_Enabled     bitfield_1b
	Storage_Mode_Enabled    bitfield_1b
	App_Direct_Mode_Enabled bitfield_1b
	Die_Sparing_Capable     bitfield_1b
	Soft_Programmable_SKU   bitfield_1b
	Reserved                bitfield_12b
	Encryption_Enabled      bitfield_1b
	Reserved2               bitfield_14b
}

type SECURITY_STATE struct {
	Reserved      bitfield_1b
	Enabled       bitfield_1b
	Locked        bitfield_1b
	Frozen        bitfield_1b
	Not_Supported bitfield_1b
	Count_Expired bitfield_1b
	Reserved2     bitfield_2b
}

type ALARM_THRESHOLD_ENABLE struct {
	Spare_Block     bitfield_1b
	Media_Temp      bitfield_1b
	Controller_Temp bitfield_1b
	Reserved        bitfield_13b
}

type DIE_SPARING_SUPPORTED struct {
	Rank_0   bitfield_1b
	Rank_1   bitfield_1b
	Rank_2   bitfield_1b
	Rank_3   bitfield_1b
	Reserved bitfield_4b
}

type SMART_VALIDATION_FLAGS struct {
	Health_Status             bitfield_1b
	Spare_Blocks              bitfield_1b
	Percent_Used              bitfield_1b
	Media_Temp                bitfield_1b
	Controller_Temp           bitfield_1b
	Unsafe_Shutdown_Counter   bitfield_1b
	AIT_DRAM_Status           bitfield_1b
	Reserved                  bitfield_2b
	Alarm_Trips               bitfield_1b
	Last_Shutdown_Status      bitfield_1b
	Vendor_Specific_Data_Size bitfield_1b
	Reserved2                 bitfield_20b
}

type HEALTH_STATUS struct {
	Noncritical bitfield_1b
	Critical    bitfield_1b
	Fatal       bitfield_1b
	Reserved    bitfield_5b
}

type ALARM_TRIPS struct {
	Spare_Block_Trip            bitfield_1b
	Media_Temperature_Trip      bitfield_1b
	Controller_Temperature_Trip bitfield_1b
	Reserved                    bitfield_5b
}

type LAST_SHUTDOWN_STATUS_DETAILS struct {
	PM_ADR_Command_Received          bitfield_1b
	PM_S3_Received                   bitfield_1b
	PM_S5_Received                   bitfield_1b
	DDRT_Power_Fail_Command_Received bitfield_1b
	PMIC_12V_Power_Fail              bitfield_1b
	PM_Warm_Reset_Received           bitfield_1b
	Thermal_Shutdown_Received        bitfield_1b
	Flush_Complete                   bitfield_1b
}

type BSR_REST1 struct {
	Media_Ready_1               bitfield_1b
	Media_Ready_2               bitfield_1b
	DDRT_IO_Init_Complete       bitfield_1b
	PCR_Lock                    bitfield_1b
	Mailbox_Ready               bitfield_1b
	Watch_Dog_Status            bitfield_1b
	First_Fast_Refresh_Complete bitfield_1b
	Credit_Ready                bitfield_1b
	Media_Disabled              bitfield_1b
	OPT_IN_Enabled              bitfield_1b
	OPT_IN_Was_Enabled          bitfield_1b
	Reserved                    bitfield_5b
	Assertion                   bitfield_1b
	MI_Stall                    bitfield_1b
	AIT_DRAM_Ready              bitfield_1b
	Reserved2                   bitfield_13b
}
