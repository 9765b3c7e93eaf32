// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the discovery of NVDIMMs from the ACPI NFIT table
package nfit

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"
)

const (
	DBG_LVL_DEFAUILT    = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

// Location of the NFIT table exported by the kernel
const NFIT_TABLE_PATH = "/sys/firmware/acpi/tables/NFIT"

const NFIT_SIGNATURE = "NFIT"

// Table is a raw copy of the NFIT.
type Table struct {
	raw []byte
}

// Subtable is one type tagged NFIT structure and its offset in the table.
type Subtable struct {
	Offset int
	Type   nfit_struct_types
	Length uint16
	Data   any // decoded structure, nil for types not decoded
}

// Dimm is an NVDIMM described by the NFIT.
type Dimm struct {
	Handle              fis.DeviceHandle
	PhysicalID          uint16
	VendorID            uint16
	DeviceID            uint16
	RevisionID          uint16
	SubsystemVendorID   uint16
	SubsystemDeviceID   uint16
	SerialNumber        uint32
	FormatInterfaceCode uint16
	RegionSize          uint64 // bytes mapped across all regions of the dimm
}

// ReadTable reads the NFIT at path and checks its signature and length.
func ReadTable(fs afero.Fs, path string) (*Table, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "nfit.ReadTable")
	}
	return NewTable(b)
}

// NewTable wraps the raw NFIT bytes in b.
func NewTable(b []byte) (*Table, error) {
	if len(b) == 0 {
		return nil, errors.New("nfit.NewTable: table read returned 0 bytes")
	}
	hdr, err := parseStruct(b, ACPI_HEADER{})
	if err != nil {
		return nil, errors.Wrap(err, "nfit.NewTable")
	}
	if string(hdr.Signature[:]) != NFIT_SIGNATURE {
		return nil, errors.Errorf("nfit.NewTable: signature %q doesn't match", hdr.Signature[:])
	}
	if int(hdr.Table_Length) > len(b) {
		return nil, errors.Errorf("nfit.NewTable: table length %d exceeds %d bytes read", hdr.Table_Length, len(b))
	}
	return &Table{raw: b[:hdr.Table_Length]}, nil
}

// Header returns the ACPI header of the table.
func (t *Table) Header() ACPI_HEADER {
	hdr, _ := parseStruct(t.raw, ACPI_HEADER{})
	return hdr
}

// Subtables walks the table from the end of its header, advancing by each
// structure's own length until the table length.
func (t *Table) Subtables() ([]Subtable, error) {
	subs := []Subtable{}
	ofs := binary.Size(NFIT_HEADER{})
	for ofs < len(t.raw) {
		h, err := parseStruct(t.raw[ofs:], NFIT_SUBTABLE_HEADER{})
		if err != nil {
			return nil, errors.Wrapf(err, "nfit.Subtables offset %d", ofs)
		}
		if h.Length < 4 || ofs+int(h.Length) > len(t.raw) {
			return nil, errors.Errorf("nfit.Subtables: bad length %d at offset %d", h.Length, ofs)
		}
		s := Subtable{Offset: ofs, Type: nfit_struct_types(h.Type), Length: h.Length}
		rec := t.raw[ofs : ofs+int(h.Length)]
		switch s.Type {
		case NFIT_REGION_MAPPING:
			s.Data, err = parseStruct(rec, NFIT_REGION_MAPPING_STRUCT{})
		case NFIT_CONTROL_REGION:
			s.Data, err = parseStruct(rec, NFIT_CONTROL_REGION_STRUCT{})
		}
		if err != nil {
			return nil, errors.Wrapf(err, "nfit.Subtables %s at offset %d", s.Type, ofs)
		}
		klog.V(DBG_LVL_DEEP_DETAIL).InfoS("nfit.Subtables", "type", s.Type.String(), "offset", ofs, "length", h.Length)
		subs = append(subs, s)
		ofs += int(h.Length)
	}
	return subs, nil
}

// Dimms joins the region mappings with their control regions. Each device handle is
// listed once, in handle order.
func (t *Table) Dimms() ([]Dimm, error) {
	subs, err := t.Subtables()
	if err != nil {
		return nil, err
	}

	ctrl := map[uint16]NFIT_CONTROL_REGION_STRUCT{}
	for _, s := range subs {
		if c, ok := s.Data.(NFIT_CONTROL_REGION_STRUCT); ok {
			ctrl[c.Control_Region_Index] = c
		}
	}

	dimms := map[fis.DeviceHandle]*Dimm{}
	for _, s := range subs {
		m, ok := s.Data.(NFIT_REGION_MAPPING_STRUCT)
		if !ok {
			continue
		}
		h := fis.DeviceHandle(m.Device_Handle)
		if d, ok := dimms[h]; ok {
			d.RegionSize += m.Region_Size
			continue
		}
		d := &Dimm{Handle: h, PhysicalID: m.Physical_ID, RegionSize: m.Region_Size}
		if c, ok := ctrl[m.Control_Region_Index]; ok {
			d.VendorID = c.Vendor_ID
			d.DeviceID = c.Device_ID
			d.RevisionID = c.Revision_ID
			d.SubsystemVendorID = c.Subsystem_Vendor_ID
			d.SubsystemDeviceID = c.Subsystem_Device_ID
			d.SerialNumber = c.Serial_Number
			d.FormatInterfaceCode = c.Region_Format_Interface_Code
		} else {
			klog.V(DBG_LVL_INFO).InfoS("nfit.Dimms no control region", "handle", uint32(h), "index", m.Control_Region_Index)
		}
		dimms[h] = d
	}

	list := make([]Dimm, 0, len(dimms))
	for _, d := range dimms {
		list = append(list, *d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Handle < list[j].Handle })
	return list, nil
}

// parse binary array into struct.
func parseStruct[T any](b []byte, s T) (T, error) {
	newStruct := s
	if len(b) < binary.Size(s) {
		return newStruct, errors.Errorf("%T needs %d bytes, have %d", s, binary.Size(s), len(b))
	}
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &newStruct)
	return newStruct, err
}
