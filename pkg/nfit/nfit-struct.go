// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file holds the ACPI NVDIMM Firmware Interface Table structures
package nfit

// Common header of every ACPI system description table
type ACPI_HEADER struct {
	Signature             [4]byte
	Table_Length          uint32
	Revision              uint8
	Checksum              byte
	Oem_ID                [6]byte
	Oem_Table_ID          [8]byte
	Oem_Revision          uint32
	Asl_Compiler_ID       [4]byte
	Asl_Compiler_Revision uint32
}

// The NFIT header is the ACPI header followed by 4 reserved bytes
type NFIT_HEADER struct {
	Header   ACPI_HEADER
	Reserved uint32
}

type nfit_struct_types uint16

const (
	NFIT_SPA_RANGE          nfit_struct_types = 0
	NFIT_REGION_MAPPING     nfit_struct_types = 1
	NFIT_INTERLEAVE         nfit_struct_types = 2
	NFIT_SMBIOS             nfit_struct_types = 3
	NFIT_CONTROL_REGION     nfit_struct_types = 4
	NFIT_BLOCK_DATA_WINDOW  nfit_struct_types = 5
	NFIT_FLUSH_HINT_ADDRESS nfit_struct_types = 6
	NFIT_PLATFORM_CAPS      nfit_struct_types = 7
)

func (t nfit_struct_types) String() string {
	switch t {
	case NFIT_SPA_RANGE:
		return "SPA Range"
	case NFIT_REGION_MAPPING:
		return "NVDIMM Region Mapping"
	case NFIT_INTERLEAVE:
		return "Interleave"
	case NFIT_SMBIOS:
		return "SMBIOS Management Information"
	case NFIT_CONTROL_REGION:
		return "NVDIMM Control Region"
	case NFIT_BLOCK_DATA_WINDOW:
		return "NVDIMM Block Data Window Region"
	case NFIT_FLUSH_HINT_ADDRESS:
		return "Flush Hint Address"
	case NFIT_PLATFORM_CAPS:
		return "Platform Capabilities"
	}
	return "Unknown"
}

// Leading fields shared by all NFIT sub structures
type NFIT_SUBTABLE_HEADER struct {
	Type   uint16
	Length uint16
}

type NFIT_REGION_MAPPING_STRUCT struct {
	Type                 uint16
	Length               uint16
	Device_Handle        uint32
	Physical_ID          uint16
	Region_ID            uint16
	SPA_Range_Index      uint16
	Control_Region_Index uint16
	Region_Size          uint64
	Region_Offset        uint64
	Physical_Address     uint64
	Interleave_Index     uint16
	Interleave_Ways      uint16
	Flags                uint16
	Reserved             uint16
}

// First 32 bytes of the control region structure. Block control window fields that
// follow are only present when the DIMM exposes block windows.
type NFIT_CONTROL_REGION_STRUCT struct {
	Type                         uint16
	Length                       uint16
	Control_Region_Index         uint16
	Vendor_ID                    uint16
	Device_ID                    uint16
	Revision_ID                  uint16
	Subsystem_Vendor_ID          uint16
	Subsystem_Device_ID          uint16
	Subsystem_Revision_ID        uint16
	Valid_Fields                 uint8
	Manufacturing_Location       uint8
	Manufacturing_Date           uint16
	Reserved                     uint16
	Serial_Number                uint32
	Region_Format_Interface_Code uint16
	Number_Of_Block_Windows      uint16
}
