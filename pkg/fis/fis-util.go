// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the helper functions shared by the fis library
package fis

import (
	"bytes"
	"fmt"
)

const (
	DBG_LVL_DEFAUILT    = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

func hex(a any) string {
	return fmt.Sprintf("%X", a)
}

// fixedString copies a fixed width firmware string up to its first NUL.
func fixedString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// passphraseField truncates or zero pads p to exactly PASSPHRASE_LEN bytes.
func passphraseField(p string) [PASSPHRASE_LEN]byte {
	var f [PASSPHRASE_LEN]byte
	copy(f[:], p)
	return f
}

// fitPayload returns b zero padded or cut to exactly size bytes.
func fitPayload(b []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, b)
	return out
}
