// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package fis

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_Capacity(t *testing.T) {
	for name, tc := range map[string]struct {
		units uint32
		exp   string
	}{
		"zero":     {0, "0 B"},
		"one unit": {1, "4.0 KiB"},
		"one gib":  {262144, "1.0 GiB"},
		"126 gib":  {126 * 262144, "126 GiB"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.exp, Capacity(tc.units))
		})
	}
}

func TestPrinter_PartitionCapacities(t *testing.T) {
	p := &DimmPartitionInfo{VolatileCapacity: 262144, PmCapacity: 2 * 262144, RawCapacity: 3 * 262144}
	exp := map[string]string{
		"volatile":   "1.0 GiB",
		"persistent": "2.0 GiB",
		"raw":        "3.0 GiB",
		"enabled":    "0 B",
	}
	assert.Equal(t, exp, p.Capacities())
}

func TestPrinter_PrintTable(t *testing.T) {
	v := &FwDebugLogLevel{LogLevel: 2, Logs: 4}

	for name, tc := range map[string]struct {
		format string
		exp    string
		expErr string
	}{
		"json": {
			format: FORMAT_JSON,
			exp:    "{\n   \"LogLevel\": 2,\n   \"Logs\": 4\n}\n",
		},
		"default": {
			format: "",
			exp:    "{\n   \"LogLevel\": 2,\n   \"Logs\": 4\n}\n",
		},
		"yaml": {
			format: FORMAT_YAML,
			exp:    "loglevel: 2\nlogs: 4\n",
		},
		"unknown": {
			format: "xml",
			expErr: `fis-printer.PrintTable: unknown format "xml"`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PrintTable(&buf, v, tc.format)
			if tc.expErr != "" {
				assert.EqualError(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, buf.String())
		})
	}
}
