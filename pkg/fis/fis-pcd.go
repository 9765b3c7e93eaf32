// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the decoding of the platform config data large payload.
// Config tables sit at firmware reported offsets and carry type tagged records.
package fis

import (
	"k8s.io/klog/v2"
)

type DeviceIdentificationV1 struct {
	ManufacturerID uint16
	SerialNumber   uint32
	ModelNumber    string
}

type DeviceIdentificationV2 struct {
	UID [9]byte
}

// DeviceIdentification keeps the raw 32 bytes along with both layout views.
type DeviceIdentification struct {
	Bytes [32]byte
	V1    DeviceIdentificationV1
	V2    DeviceIdentificationV2
}

type IdInfoTable struct {
	DeviceIdentification DeviceIdentification
	PartitionOffset      uint64
	PartitionSize        uint64
}

type InterleaveInformationTable struct {
	Type          uint16
	Length        uint16
	Index         uint16
	NumberOfDimms uint8
	MemoryType    uint8
	Format        uint32
	MirrorEnabled uint8
	ChangeStatus  uint8
	MemorySpare   uint8
	IdInfoTable   []IdInfoTable
}

type PartitionSizeChangeTable struct {
	Type                          uint16
	Length                        uint16
	PartitionSizeChangeStatus     uint32
	PersistentMemoryPartitionSize uint64
}

type ConfigTableHeader struct {
	Signature       string
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OemID           string
	OemTableID      string
	OemRevision     uint32
	CreatorID       uint32
	CreatorRevision uint32
}

type CurrentConfigTable struct {
	ConfigTableHeader
	ConfigStatus               uint16
	VolatileMemorySize         uint64
	PersistentMemorySize       uint64
	InterleaveInformationTable []InterleaveInformationTable
}

type ConfigInputTable struct {
	ConfigTableHeader
	SequenceNumber             uint32
	InterleaveInformationTable []InterleaveInformationTable
	PartitionSizeChangeTable   []PartitionSizeChangeTable
}

type ConfigOutputTable struct {
	ConfigTableHeader
	SequenceNumber             uint32
	ValidationStatus           uint8
	InterleaveInformationTable []InterleaveInformationTable
	PartitionSizeChangeTable   []PartitionSizeChangeTable
}

// PlatformConfigData is the decoded platform config data. Absent tables are nil.
type PlatformConfigData struct {
	Signature           string
	Length              uint32
	Revision            uint8
	Checksum            uint8
	OemID               string
	OemTableID          string
	OemRevision         uint32
	CreatorID           uint32
	CreatorRevision     uint32
	CurrentConfigSize   uint32
	CurrentConfigOffset uint32
	InputConfigSize     uint32
	InputConfigOffset   uint32
	OutputConfigSize    uint32
	OutputConfigOffset  uint32
	CurrentConfig       *CurrentConfigTable
	InputConfig         *ConfigInputTable
	OutputConfig        *ConfigOutputTable
}

// window returns buf[ofs:ofs+n], or PARSING_WRONG_OFFSET when it is not inside buf.
func window(buf []byte, ofs, n int) ([]byte, ParseCode) {
	if ofs < 0 || n < 0 || ofs > len(buf) || len(buf)-ofs < n {
		return nil, PARSING_WRONG_OFFSET
	}
	return buf[ofs : ofs+n], PARSE_SUCCESS
}

// decodeAt decodes the wire structure w located at ofs inside buf.
func decodeAt[T any](buf []byte, ofs int, w T) (T, ParseCode) {
	b, rc := window(buf, ofs, wireSize(w))
	if rc != PARSE_SUCCESS {
		return w, rc
	}
	out, err := parseStruct(b, w)
	if err != nil {
		klog.V(DBG_LVL_BASIC).InfoS("fis-pcd.decodeAt", "offset", ofs, "err", err)
		return w, PARSING_WRONG_OFFSET
	}
	return out, PARSE_SUCCESS
}

func decodeConfigTableHeader(h CONFIG_TABLE_HEADER) ConfigTableHeader {
	return ConfigTableHeader{
		Signature:       fixedString(h.Signature[:]),
		Length:          h.Length,
		Revision:        h.Revision,
		Checksum:        h.Checksum,
		OemID:           fixedString(h.OEM_ID[:]),
		OemTableID:      fixedString(h.OEM_Table_ID[:]),
		OemRevision:     h.OEM_Revision,
		CreatorID:       h.Creator_ID,
		CreatorRevision: h.Creator_Revision,
	}
}

func decodeDeviceIdentification(b [32]byte) DeviceIdentification {
	d := DeviceIdentification{Bytes: b}
	v1, _ := parseStruct(b[:], DEVICE_IDENTIFICATION_V1{})
	d.V1 = DeviceIdentificationV1{
		ManufacturerID: v1.Manufacturer_ID,
		SerialNumber:   v1.Serial_Number,
		ModelNumber:    fixedString(v1.Model_Number[:]),
	}
	v2, _ := parseStruct(b[:], DEVICE_IDENTIFICATION_V2{})
	d.V2 = DeviceIdentificationV2{UID: v2.UID}
	return d
}

// parseInterleaveInformation decodes the record at ofs and the Number_Of_Dimms
// identification entries packed right after its fixed part.
func parseInterleaveInformation(tbl []byte, ofs int) (InterleaveInformationTable, ParseCode) {
	w, rc := decodeAt(tbl, ofs, INTERLEAVE_INFORMATION_TABLE{})
	if rc != PARSE_SUCCESS {
		return InterleaveInformationTable{}, rc
	}
	t := InterleaveInformationTable{
		Type:          w.Type,
		Length:        w.Length,
		Index:         w.Index,
		NumberOfDimms: w.Number_Of_Dimms,
		MemoryType:    w.Memory_Type,
		Format:        w.Format,
		MirrorEnabled: w.Mirror_Enabled,
		ChangeStatus:  w.Change_Status,
		MemorySpare:   w.Memory_Spare,
		IdInfoTable:   make([]IdInfoTable, 0, w.Number_Of_Dimms),
	}
	cur := ofs + wireSize(w)
	for j := 0; j < int(w.Number_Of_Dimms); j++ {
		id, rc := decodeAt(tbl, cur, ID_INFO_TABLE{})
		if rc != PARSE_SUCCESS {
			return InterleaveInformationTable{}, rc
		}
		t.IdInfoTable = append(t.IdInfoTable, IdInfoTable{
			DeviceIdentification: decodeDeviceIdentification(id.Device_Identification),
			PartitionOffset:      id.Partition_Offset,
			PartitionSize:        id.Partition_Size,
		})
		cur += wireSize(id)
	}
	return t, PARSE_SUCCESS
}

func parsePartitionSizeChange(tbl []byte, ofs int) (PartitionSizeChangeTable, ParseCode) {
	w, rc := decodeAt(tbl, ofs, PARTITION_SIZE_CHANGE_TABLE{})
	if rc != PARSE_SUCCESS {
		return PartitionSizeChangeTable{}, rc
	}
	return PartitionSizeChangeTable{
		Type:                          w.Type,
		Length:                        w.Length,
		PartitionSizeChangeStatus:     w.Partition_Size_Change_Status,
		PersistentMemoryPartitionSize: w.Persistent_Memory_Partition_Size,
	}, PARSE_SUCCESS
}

// configRecords collects the type tagged records of one config table.
type configRecords struct {
	interleave []InterleaveInformationTable
	sizeChange []PartitionSizeChangeTable
}

// walkConfigRecords reads records from start until the cursor reaches length, advancing
// by each record's own length. Only the types in allowed are accepted.
func walkConfigRecords(tbl []byte, start int, length uint32, allowed ...uint16) (configRecords, ParseCode) {
	recs := configRecords{}
	for cur := start; cur < int(length); {
		hdr, rc := decodeAt(tbl, cur, PCD_TABLE_RECORD_HEADER{})
		if rc != PARSE_SUCCESS {
			return configRecords{}, rc
		}
		if !typeAllowed(hdr.Type, allowed) {
			klog.V(DBG_LVL_INFO).InfoS("fis-pcd.walkConfigRecords unknown type", "type", hdr.Type, "offset", cur)
			return configRecords{}, PARSING_TYPE_NOT_FOUND
		}
		if hdr.Length == 0 {
			return configRecords{}, PARSING_WRONG_OFFSET
		}

		switch hdr.Type {
		case PCD_INTERLEAVE_INFORMATION_TABLE:
			t, rc := parseInterleaveInformation(tbl, cur)
			if rc != PARSE_SUCCESS {
				return configRecords{}, rc
			}
			recs.interleave = append(recs.interleave, t)
		case PCD_PARTITION_SIZE_CHANGE_TABLE_TYPE:
			t, rc := parsePartitionSizeChange(tbl, cur)
			if rc != PARSE_SUCCESS {
				return configRecords{}, rc
			}
			recs.sizeChange = append(recs.sizeChange, t)
		}
		klog.V(DBG_LVL_DEEP_DETAIL).InfoS("fis-pcd.walkConfigRecords", "type", hdr.Type, "offset", cur, "length", hdr.Length)
		cur += int(hdr.Length)
	}
	return recs, PARSE_SUCCESS
}

func typeAllowed(t uint16, allowed []uint16) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func parseCurrentConfig(pcd []byte, ofs int) (*CurrentConfigTable, ParseCode) {
	w, rc := decodeAt(pcd, ofs, CURRENT_CONFIG_TABLE{})
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	recs, rc := walkConfigRecords(pcd[ofs:], wireSize(w), w.Header.Length, PCD_INTERLEAVE_INFORMATION_TABLE)
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	return &CurrentConfigTable{
		ConfigTableHeader:          decodeConfigTableHeader(w.Header),
		ConfigStatus:               w.Config_Status,
		VolatileMemorySize:         w.Volatile_Memory_Size,
		PersistentMemorySize:       w.Persistent_Memory_Size,
		InterleaveInformationTable: recs.interleave,
	}, PARSE_SUCCESS
}

func parseConfigInput(pcd []byte, ofs int) (*ConfigInputTable, ParseCode) {
	w, rc := decodeAt(pcd, ofs, INPUT_CONFIG_TABLE{})
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	recs, rc := walkConfigRecords(pcd[ofs:], wireSize(w), w.Header.Length,
		PCD_INTERLEAVE_INFORMATION_TABLE, PCD_PARTITION_SIZE_CHANGE_TABLE_TYPE)
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	return &ConfigInputTable{
		ConfigTableHeader:          decodeConfigTableHeader(w.Header),
		SequenceNumber:             w.Sequence_Number,
		InterleaveInformationTable: recs.interleave,
		PartitionSizeChangeTable:   recs.sizeChange,
	}, PARSE_SUCCESS
}

func parseConfigOutput(pcd []byte, ofs int) (*ConfigOutputTable, ParseCode) {
	w, rc := decodeAt(pcd, ofs, OUTPUT_CONFIG_TABLE{})
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	recs, rc := walkConfigRecords(pcd[ofs:], wireSize(w), w.Header.Length,
		PCD_INTERLEAVE_INFORMATION_TABLE, PCD_PARTITION_SIZE_CHANGE_TABLE_TYPE)
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	return &ConfigOutputTable{
		ConfigTableHeader:          decodeConfigTableHeader(w.Header),
		SequenceNumber:             w.Sequence_Number,
		ValidationStatus:           w.Validation_Status,
		InterleaveInformationTable: recs.interleave,
		PartitionSizeChangeTable:   recs.sizeChange,
	}, PARSE_SUCCESS
}

// parsePlatformConfigData decodes the large payload of platform config data. The
// whole structure is returned or nothing is.
func parsePlatformConfigData(pcd []byte) (*PlatformConfigData, ParseCode) {
	h, rc := decodeAt(pcd, 0, PLATFORM_CONFIG_DATA_HEADER{})
	if rc != PARSE_SUCCESS {
		return nil, rc
	}
	d := &PlatformConfigData{
		Signature:           fixedString(h.Signature[:]),
		Length:              h.Length,
		Revision:            h.Revision,
		Checksum:            h.Checksum,
		OemID:               fixedString(h.OEM_ID[:]),
		OemTableID:          fixedString(h.OEM_Table_ID[:]),
		OemRevision:         h.OEM_Revision,
		CreatorID:           h.Creator_ID,
		CreatorRevision:     h.Creator_Revision,
		CurrentConfigSize:   h.Current_Config_Size,
		CurrentConfigOffset: h.Current_Config_Offset,
		InputConfigSize:     h.Input_Config_Size,
		InputConfigOffset:   h.Input_Config_Offset,
		OutputConfigSize:    h.Output_Config_Size,
		OutputConfigOffset:  h.Output_Config_Offset,
	}

	// A zero offset means the table is not present
	if d.CurrentConfigOffset != 0 {
		if d.CurrentConfig, rc = parseCurrentConfig(pcd, int(d.CurrentConfigOffset)); rc != PARSE_SUCCESS {
			return nil, rc
		}
	}
	if d.InputConfigOffset != 0 {
		if d.InputConfig, rc = parseConfigInput(pcd, int(d.InputConfigOffset)); rc != PARSE_SUCCESS {
			return nil, rc
		}
	}
	if d.OutputConfigOffset != 0 {
		if d.OutputConfig, rc = parseConfigOutput(pcd, int(d.OutputConfigOffset)); rc != PARSE_SUCCESS {
			return nil, rc
		}
	}
	return d, PARSE_SUCCESS
}
