// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the resolution of NFIT device handles to libnvdimm nmem devices
// and the vendor command buffer exchanged with the kernel.
package ndctl

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

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

const (
	DEFAULT_SYSFS_ROOT = "/sys"
	DEFAULT_DEV_ROOT   = "/dev"
)

// Size of the opcode and in_length fields ahead of the input payload, and of the
// status and out_length fields ahead of the output payload.
const (
	VENDOR_HDR_SIZE  = 8
	VENDOR_TAIL_SIZE = 8
)

// Nmem is one libnvdimm dimm device.
type Nmem struct {
	Name   string // nmemN
	Handle fis.DeviceHandle
	Path   string // device node
}

// Resolver maps device handles to nmem devices by reading sysfs. Nothing is cached:
// every Resolve scans sysfs again.
type Resolver struct {
	fs        afero.Fs
	sysfsRoot string
	devRoot   string
	open      func(path string) (fis.Mailbox, error)
}

func NewResolver(fs afero.Fs, sysfsRoot, devRoot string) *Resolver {
	if sysfsRoot == "" {
		sysfsRoot = DEFAULT_SYSFS_ROOT
	}
	if devRoot == "" {
		devRoot = DEFAULT_DEV_ROOT
	}
	return &Resolver{fs: fs, sysfsRoot: sysfsRoot, devRoot: devRoot, open: openDevice}
}

// List returns every nmem device exposing an NFIT handle, ordered by handle.
func (r *Resolver) List() ([]Nmem, error) {
	pattern := filepath.Join(r.sysfsRoot, "bus", "nd", "devices", "nmem*")
	dirs, err := afero.Glob(r.fs, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "ndctl.List")
	}

	list := []Nmem{}
	for _, dir := range dirs {
		b, err := afero.ReadFile(r.fs, filepath.Join(dir, "nfit", "handle"))
		if err != nil {
			klog.V(DBG_LVL_DETAIL).InfoS("ndctl.List no nfit handle", "dir", dir, "err", err)
			continue
		}
		h, err := strconv.ParseUint(strings.TrimSpace(string(b)), 0, 32)
		if err != nil {
			klog.V(DBG_LVL_INFO).InfoS("ndctl.List bad handle", "dir", dir, "value", string(b))
			continue
		}
		name := filepath.Base(dir)
		list = append(list, Nmem{
			Name:   name,
			Handle: fis.DeviceHandle(h),
			Path:   filepath.Join(r.devRoot, name),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Handle < list[j].Handle })
	return list, nil
}

// Lookup returns the nmem device carrying handle h.
func (r *Resolver) Lookup(h fis.DeviceHandle) (Nmem, error) {
	list, err := r.List()
	if err != nil {
		return Nmem{}, err
	}
	for _, n := range list {
		if n.Handle == h {
			return n, nil
		}
	}
	return Nmem{}, errors.Wrapf(fis.ErrBadDeviceHandle, "handle 0x%X", uint32(h))
}

// Resolve opens the mailbox of the dimm carrying handle h.
func (r *Resolver) Resolve(ctx context.Context, h fis.DeviceHandle) (fis.Mailbox, error) {
	n, err := r.Lookup(h)
	if err != nil {
		return nil, err
	}
	klog.V(DBG_LVL_DETAIL).InfoS("ndctl.Resolve", "handle", uint32(h), "dev", n.Path)
	mb, err := r.open(n.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "ndctl.Resolve %s", n.Path)
	}
	return mb, nil
}

// vendorCommand lays out the vendor ioctl buffer:
// opcode, in_length, in_buf, status, out_length, out_buf.
func vendorCommand(opcode uint16, input []byte, outputSize int) []byte {
	buf := make([]byte, VENDOR_HDR_SIZE+len(input)+VENDOR_TAIL_SIZE+outputSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(opcode))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(input)))
	copy(buf[VENDOR_HDR_SIZE:], input)
	tail := VENDOR_HDR_SIZE + len(input)
	binary.LittleEndian.PutUint32(buf[tail+4:], uint32(outputSize))
	return buf
}

// vendorResult extracts the firmware status and output of a completed vendor command.
func vendorResult(buf []byte, inputSize int) (fis.CompositeStatus, []byte) {
	tail := VENDOR_HDR_SIZE + inputSize
	if len(buf) < tail+VENDOR_TAIL_SIZE {
		return fis.TransportStatus(fis.PT_ERR_DRIVERFAILED), nil
	}
	st := fis.DecodeDsmStatus(binary.LittleEndian.Uint32(buf[tail:]))
	n := int(binary.LittleEndian.Uint32(buf[tail+4:]))
	out := buf[tail+VENDOR_TAIL_SIZE:]
	if n < len(out) {
		out = out[:n]
	}
	return st, append([]byte(nil), out...)
}
