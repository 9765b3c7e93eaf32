// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package nfit

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
)

func pack(t *testing.T, buf *bytes.Buffer, v any) {
	t.Helper()
	require.NoError(t, binary.Write(buf, binary.LittleEndian, v))
}

func mapping(handle uint32, ctrl uint16, size uint64) NFIT_REGION_MAPPING_STRUCT {
	return NFIT_REGION_MAPPING_STRUCT{
		Type:                 uint16(NFIT_REGION_MAPPING),
		Length:               48,
		Device_Handle:        handle,
		Physical_ID:          uint16(handle),
		Control_Region_Index: ctrl,
		Region_Size:          size,
	}
}

func control(index uint16, serial uint32) NFIT_CONTROL_REGION_STRUCT {
	return NFIT_CONTROL_REGION_STRUCT{
		Type:                         uint16(NFIT_CONTROL_REGION),
		Length:                       32,
		Control_Region_Index:         index,
		Vendor_ID:                    0x8980,
		Device_ID:                    0x5141,
		Revision_ID:                  0x18,
		Subsystem_Vendor_ID:          0x8980,
		Serial_Number:                serial,
		Region_Format_Interface_Code: 0x301,
	}
}

// testTable builds an NFIT with two DIMMs, one of them mapped by two regions.
func testTable(t *testing.T) []byte {
	body := &bytes.Buffer{}
	pack(t, body, mapping(0x1001, 1, 1<<30))
	pack(t, body, mapping(0x0001, 2, 1<<30))
	// SPA range, not decoded
	pack(t, body, NFIT_SUBTABLE_HEADER{Type: uint16(NFIT_SPA_RANGE), Length: 56})
	pack(t, body, make([]byte, 52))
	pack(t, body, mapping(0x1001, 1, 1<<30))
	pack(t, body, control(1, 0xAABBCCDD))
	// control region with block window fields
	c := control(2, 0x11223344)
	c.Length = 80
	pack(t, body, c)
	pack(t, body, make([]byte, 48))

	hdr := NFIT_HEADER{Header: ACPI_HEADER{Revision: 1}}
	copy(hdr.Header.Signature[:], "NFIT")
	hdr.Header.Table_Length = uint32(binary.Size(hdr) + body.Len())

	b := &bytes.Buffer{}
	pack(t, b, hdr)
	b.Write(body.Bytes())
	return b.Bytes()
}

func TestNfit_Dimms(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, NFIT_TABLE_PATH, testTable(t), 0o444))

	tbl, err := ReadTable(fs, NFIT_TABLE_PATH)
	require.NoError(t, err)
	hdr := tbl.Header()
	assert.Equal(t, "NFIT", string(hdr.Signature[:]))

	dimms, err := tbl.Dimms()
	require.NoError(t, err)

	exp := []Dimm{
		{
			Handle:              fis.DeviceHandle(0x0001),
			PhysicalID:          0x0001,
			VendorID:            0x8980,
			DeviceID:            0x5141,
			RevisionID:          0x18,
			SubsystemVendorID:   0x8980,
			SerialNumber:        0x11223344,
			FormatInterfaceCode: 0x301,
			RegionSize:          1 << 30,
		},
		{
			Handle:              fis.DeviceHandle(0x1001),
			PhysicalID:          0x1001,
			VendorID:            0x8980,
			DeviceID:            0x5141,
			RevisionID:          0x18,
			SubsystemVendorID:   0x8980,
			SerialNumber:        0xAABBCCDD,
			FormatInterfaceCode: 0x301,
			RegionSize:          2 << 30,
		},
	}
	if diff := cmp.Diff(exp, dimms); diff != "" {
		t.Fatalf("unexpected dimms (-want, +got):\n%s", diff)
	}
}

func TestNfit_Subtables(t *testing.T) {
	tbl, err := NewTable(testTable(t))
	require.NoError(t, err)

	subs, err := tbl.Subtables()
	require.NoError(t, err)

	types := []nfit_struct_types{}
	for _, s := range subs {
		types = append(types, s.Type)
	}
	exp := []nfit_struct_types{
		NFIT_REGION_MAPPING, NFIT_REGION_MAPPING, NFIT_SPA_RANGE,
		NFIT_REGION_MAPPING, NFIT_CONTROL_REGION, NFIT_CONTROL_REGION,
	}
	assert.Equal(t, exp, types)
	assert.Equal(t, 40, subs[0].Offset)
	assert.Nil(t, subs[2].Data)
}

func TestNfit_BadTables(t *testing.T) {
	for name, tc := range map[string]struct {
		modify func(b []byte) []byte
		expErr string
	}{
		"empty": {
			modify: func(b []byte) []byte { return nil },
			expErr: "nfit.NewTable: table read returned 0 bytes",
		},
		"signature": {
			modify: func(b []byte) []byte { copy(b, "CEDT"); return b },
			expErr: `nfit.NewTable: signature "CEDT" doesn't match`,
		},
		"truncated": {
			modify: func(b []byte) []byte { return b[:100] },
			expErr: "exceeds 100 bytes read",
		},
		"zero length structure": {
			modify: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[42:], 0)
				return b
			},
			expErr: "bad length 0 at offset 40",
		},
	} {
		t.Run(name, func(t *testing.T) {
			tbl, err := NewTable(tc.modify(testTable(t)))
			if err == nil {
				_, err = tbl.Dimms()
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expErr)
		})
	}
}

func TestNfit_ReadMissing(t *testing.T) {
	_, err := ReadTable(afero.NewMemMapFs(), NFIT_TABLE_PATH)
	assert.Error(t, err)
}
