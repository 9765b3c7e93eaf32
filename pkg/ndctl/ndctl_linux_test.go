// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package ndctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
)

func TestNdctl_ErrnoStatus(t *testing.T) {
	for name, tc := range map[string]struct {
		errno   unix.Errno
		expFunc fis.PtResult
		expCode fis.ReturnCode
	}{
		"permission": {unix.EACCES, fis.PT_ERR_INVALIDPERMISSIONS, fis.ErrInvalidPermissions},
		"memory":     {unix.ENOMEM, fis.PT_ERR_NOMEMORY, fis.ErrNoMemory},
		"busy":       {unix.EBUSY, fis.PT_ERR_DEVICEBUSY, fis.ErrDeviceBusy},
		"no device":  {unix.ENOTTY, fis.PT_ERR_BADDEVICE, fis.ErrBadDevice},
		"other":      {unix.EIO, fis.PT_ERR_DRIVERFAILED, fis.ErrDriverFailed},
	} {
		t.Run(name, func(t *testing.T) {
			st := errnoStatus(tc.errno)
			assert.Equal(t, tc.expFunc, st.Func)
			assert.Equal(t, uint8(tc.errno), st.Ioctl)
			_, code := fis.Normalize(st)
			assert.Equal(t, tc.expCode, code)
		})
	}
}

func TestNdctl_OpenMissingDevice(t *testing.T) {
	_, err := openDevice("/nonexistent/nmem0")
	assert.Error(t, err)
}
