// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the text rendering of decoded results
package fis

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Firmware capacities are reported in multiples of 4 KiB
const CAPACITY_UNIT = 4096

// Output formats understood by PrintTable
const (
	FORMAT_JSON = "json"
	FORMAT_YAML = "yaml"
)

// Capacity renders a firmware capacity field in IEC units.
func Capacity(units uint32) string {
	return humanize.IBytes(uint64(units) * CAPACITY_UNIT)
}

// PrintTable writes v to w as indented json or yaml.
func PrintTable(w io.Writer, v any, format string) error {
	switch format {
	case FORMAT_JSON, "":
		s, err := json.MarshalIndent(v, "", "   ")
		if err != nil {
			return errors.Wrap(err, "fis-printer.PrintTable")
		}
		_, err = fmt.Fprint(w, string(s), "\n")
		return err
	case FORMAT_YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(3)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "fis-printer.PrintTable")
		}
		return enc.Close()
	}
	return errors.Errorf("fis-printer.PrintTable: unknown format %q", format)
}

// Capacities summarizes the partition layout in readable units.
func (p *DimmPartitionInfo) Capacities() map[string]string {
	return map[string]string{
		"volatile":   Capacity(p.VolatileCapacity),
		"persistent": Capacity(p.PmCapacity),
		"raw":        Capacity(p.RawCapacity),
		"enabled":    Capacity(p.EnabledCapacity),
	}
}

// Capacity returns the raw capacity in readable units.
func (d *IdentifyDimm) Capacity() string {
	return Capacity(d.RawCapacity)
}
