// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

//go:build !linux

package ndctl

import (
	"runtime"

	"github.com/Seagate/nvdimm-fis/pkg/fis"
	"github.com/pkg/errors"
)

func openDevice(path string) (fis.Mailbox, error) {
	return nil, errors.Errorf("ndctl.openDevice %s: passthrough not supported on %s", path, runtime.GOOS)
}
