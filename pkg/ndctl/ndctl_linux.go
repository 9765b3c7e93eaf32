// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the libnvdimm vendor command passthrough
package ndctl

import (
	"context"
	"unsafe"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// _IOWR('N', ND_CMD_VENDOR, struct nd_cmd_vendor_hdr) from <linux/ndctl.h>
const ND_IOCTL_VENDOR = 0xC0084E09

// device is an open /dev/nmemN node.
type device struct {
	path string
	fd   int
}

func openDevice(path string) (fis.Mailbox, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "ndctl.openDevice %s", path)
	}
	return &device{path: path, fd: fd}, nil
}

func (d *device) Exchange(ctx context.Context, opcode uint16, input []byte, outputSize int) ([]byte, fis.CompositeStatus) {
	if err := ctx.Err(); err != nil {
		return nil, fis.TransportStatus(fis.PT_ERR_UNKNOWN)
	}
	buf := vendorCommand(opcode, input, outputSize)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), ND_IOCTL_VENDOR, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		klog.V(DBG_LVL_BASIC).InfoS("ndctl.Exchange ioctl", "dev", d.path, "opcode", opcode, "errno", errno.Error())
		return nil, errnoStatus(errno)
	}
	st, out := vendorResult(buf, len(input))
	klog.V(DBG_LVL_DEEP_DETAIL).InfoS("ndctl.Exchange", "dev", d.path, "opcode", opcode, "status", st.String(), "out", len(out))
	return out, st
}

func (d *device) Close() error {
	return unix.Close(d.fd)
}

// errnoStatus maps a failed ioctl onto the passthrough result, keeping the errno.
func errnoStatus(errno unix.Errno) fis.CompositeStatus {
	st := fis.CompositeStatus{Func: fis.PT_ERR_DRIVERFAILED, Ioctl: uint8(errno)}
	switch errno {
	case unix.EACCES, unix.EPERM:
		st.Func = fis.PT_ERR_INVALIDPERMISSIONS
	case unix.ENOMEM:
		st.Func = fis.PT_ERR_NOMEMORY
	case unix.EBUSY:
		st.Func = fis.PT_ERR_DEVICEBUSY
	case unix.ENODEV, unix.ENXIO, unix.ENOTTY:
		st.Func = fis.PT_ERR_BADDEVICE
	}
	return st
}
