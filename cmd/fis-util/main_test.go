// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
	"github.com/Seagate/nvdimm-fis/pkg/nfit"
)

const testRecording = "/var/lib/fis/dimm.yaml"

// testFs holds a recording of a few exchanges with DIMM 0x1001.
func testFs(t *testing.T) afero.Fs {
	t.Helper()
	ctx := context.Background()
	m := fis.NewMockDimm()
	m.SetResponse(fis.CMD_GET_SECURITY_STATE, []byte{0x06})
	m.SetStatus(fis.CMD_ENABLE_DIMM, fis.FirmwareStatus(fis.MB_MEDIA_DISABLED, 0))
	partition := make([]byte, 40)
	binary.LittleEndian.PutUint32(partition[16:], 0x40000) // 1 GiB persistent
	m.SetResponse(fis.CMD_DIMM_PARTITION_INFO, partition)

	rec := fis.NewRecorder(fis.NewPassthrough(fis.NewMockResolver(map[fis.DeviceHandle]*fis.MockDimm{0x1001: m})))
	c := fis.NewClient(rec)
	for _, cmd := range []string{"get_security_state", "enable_dimm", "freeze_lock", "dimm_partition_info"} {
		_, _ = c.Run(ctx, 0x1001, cmd)
	}

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/var/lib/fis", 0o755))
	require.NoError(t, fis.SaveRecording(fs, testRecording, rec.Recording()))
	return fs
}

func runArgs(t *testing.T, fs afero.Fs, args ...string) (int, string) {
	t.Helper()
	out := &bytes.Buffer{}
	code := run(context.Background(), append([]string{"fis-util"}, args...), out, fs)
	return code, out.String()
}

func TestMain_Run(t *testing.T) {
	for name, tc := range map[string]struct {
		args     []string
		expCode  int
		contains []string
	}{
		"no args prints help": {
			contains: []string{"fis-util is a command line tool"},
		},
		"version": {
			args:     []string{"--version"},
			contains: []string{"version " + Version},
		},
		"unknown flag": {
			args:     []string{"--bogus"},
			expCode:  1,
			contains: []string{"ERROR: parsing parameters"},
		},
		"bad format": {
			args:     []string{"--format=xml"},
			expCode:  1,
			contains: []string{"ERROR: parsing parameters"},
		},
		"commands": {
			args:     []string{"--commands"},
			contains: []string{"Supported firmware commands: 29", "platform_config_data", "large", "0xF103"},
		},
		"json response": {
			args:     []string{"--handle=0x1001", "--cmd=get_security_state", "--replay=" + testRecording},
			contains: []string{"\"Raw\": 6"},
		},
		"yaml response": {
			args:     []string{"--handle=1001", "--cmd=get_security_state", "--format=yaml", "--replay=" + testRecording},
			contains: []string{"raw: 6"},
		},
		"status only": {
			args:     []string{"--handle=0x1001", "--cmd=freeze_lock", "--replay=" + testRecording},
			contains: []string{"freeze_lock: success"},
		},
		"partition capacities": {
			args:     []string{"--handle=0x1001", "--cmd=dimm_partition_info", "--replay=" + testRecording},
			contains: []string{"Capacities:", "\"persistent\": \"1.0 GiB\""},
		},
		"firmware failure": {
			args:     []string{"--handle=0x1001", "--cmd=enable_dimm", "--replay=" + testRecording},
			expCode:  1,
			contains: []string{"ERROR: enable_dimm: device error", "FW Status: 0x14"},
		},
		"handle not recorded": {
			args:     []string{"--handle=0x2001", "--cmd=get_security_state", "--replay=" + testRecording},
			expCode:  1,
			contains: []string{"ERROR: get_security_state: bad device"},
		},
		"unknown command": {
			args:     []string{"--handle=0x1001", "--cmd=reboot", "--replay=" + testRecording},
			expCode:  1,
			contains: []string{"unknown command \"reboot\""},
		},
		"missing handle": {
			args:     []string{"--cmd=get_security_state"},
			expCode:  1,
			contains: []string{"--cmd needs --handle"},
		},
		"bad handle": {
			args:     []string{"--handle=zz", "--cmd=get_security_state"},
			expCode:  1,
			contains: []string{"bad device handle"},
		},
		"missing recording": {
			args:     []string{"--handle=0x1001", "--cmd=get_security_state", "--replay=/nope.yaml"},
			expCode:  1,
			contains: []string{"fis-dump.LoadRecording /nope.yaml"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			code, out := runArgs(t, testFs(t), tc.args...)
			assert.Equal(t, tc.expCode, code, out)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestMain_DumpReplayed(t *testing.T) {
	fs := testFs(t)
	code, out := runArgs(t, fs, "--handle=0x1001", "--cmd=get_security_state", "--replay="+testRecording, "--dump=/dumps")
	require.Equal(t, 0, code, out)

	rec, err := fis.LoadRecording(fs, "/dumps/fis-1001-get_security_state.yaml")
	require.NoError(t, err)
	require.Len(t, rec.Exchanges, 1)
	assert.Equal(t, fis.DeviceHandle(0x1001), rec.Exchanges[0].Handle)
	assert.Equal(t, fis.CMD_GET_SECURITY_STATE.Opcode, rec.Exchanges[0].Opcode)
}

func TestMain_ListNmems(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/sys/bus/nd/devices/nmem0/nfit", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/sys/bus/nd/devices/nmem0/nfit/handle", []byte("0x1001\n"), 0o444))

	code, out := runArgs(t, fs, "--list")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Total devices found: 1")
	assert.Contains(t, out, "/dev/nmem0")
}

func TestMain_ListNfit(t *testing.T) {
	body := &bytes.Buffer{}
	require.NoError(t, binary.Write(body, binary.LittleEndian, nfit.NFIT_REGION_MAPPING_STRUCT{
		Type:                 uint16(nfit.NFIT_REGION_MAPPING),
		Length:               48,
		Device_Handle:        0x0101,
		Control_Region_Index: 1,
		Region_Size:          126 << 30,
	}))
	require.NoError(t, binary.Write(body, binary.LittleEndian, nfit.NFIT_CONTROL_REGION_STRUCT{
		Type:                 uint16(nfit.NFIT_CONTROL_REGION),
		Length:               32,
		Control_Region_Index: 1,
		Vendor_ID:            0x8980,
		Device_ID:            0x5141,
		Serial_Number:        0xAABBCCDD,
	}))
	hdr := nfit.NFIT_HEADER{}
	copy(hdr.Header.Signature[:], "NFIT")
	hdr.Header.Table_Length = uint32(binary.Size(hdr) + body.Len())
	tbl := &bytes.Buffer{}
	require.NoError(t, binary.Write(tbl, binary.LittleEndian, hdr))
	tbl.Write(body.Bytes())

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tables/NFIT", tbl.Bytes(), 0o444))

	code, out := runArgs(t, fs, "--list", "--nfit=/tables/NFIT")
	require.Equal(t, 0, code, out)
	for _, s := range []string{"Total devices found: 1", "0x0101", "0x5141", "0xAABBCCDD", "126 GiB"} {
		assert.Contains(t, out, s)
	}
}

func TestMain_Config(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/fis.yaml", []byte("sysfs_root: /host/sys\noutput_format: yaml\nverbosity: \"2\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/etc/bad.yaml", []byte("output_format: xml\n"), 0o644))

	cfg, err := LoadConfig(fs, "/etc/fis.yaml")
	require.NoError(t, err)
	exp := DefaultConfig()
	exp.SysfsRoot = "/host/sys"
	exp.OutputFormat = fis.FORMAT_YAML
	exp.Verbosity = "2"
	if diff := cmp.Diff(exp, cfg); diff != "" {
		t.Fatalf("unexpected config (-want, +got):\n%s", diff)
	}

	cfg.apply(&Settings{Format: fis.FORMAT_JSON, Dump: "/dumps", Verbosity: "0"})
	assert.Equal(t, fis.FORMAT_JSON, cfg.OutputFormat)
	assert.Equal(t, "/dumps", cfg.DumpDir)
	assert.Equal(t, "0", cfg.Verbosity)
	assert.Equal(t, "/host/sys", cfg.SysfsRoot)

	_, err = LoadConfig(fs, "/etc/bad.yaml")
	assert.EqualError(t, err, "config /etc/bad.yaml: unknown output_format \"xml\"")

	_, err = LoadConfig(fs, "/etc/missing.yaml")
	assert.Error(t, err)

	code, out := runArgs(t, fs, "--config=/etc/bad.yaml", "--version")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown output_format")
}
