// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the large payload side channel of the BIOS emulated command.
// Payloads larger than the small mailbox are moved in rw_size chunks, strictly in order.
package fis

import (
	"context"

	"k8s.io/klog/v2"
)

// chunkPlan splits a payload of size bytes into chunks of at most rw bytes.
func chunkPlan(size, rw uint32) []LARGE_PAYLOAD_CHUNK_HEADER {
	if rw == 0 {
		return nil
	}
	plan := []LARGE_PAYLOAD_CHUNK_HEADER{}
	for ofs := uint32(0); ofs < size; ofs += rw {
		n := rw
		if size-ofs < rw {
			n = size - ofs
		}
		plan = append(plan, LARGE_PAYLOAD_CHUNK_HEADER{Size: n, Offset: ofs})
	}
	return plan
}

// payloadSize queries the large payload capacities of the DIMM.
func payloadSize(ctx context.Context, mb Mailbox) (PAYLOAD_SIZE_OUTPUT, CompositeStatus) {
	ps := PAYLOAD_SIZE_OUTPUT{}
	out, st := mb.Exchange(ctx, mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_GET_PAYLOAD_SIZE), nil, wireSize(ps))
	if !st.IsSuccess() {
		return ps, st
	}
	ps, err := parseStruct(out, ps)
	if err != nil {
		klog.V(DBG_LVL_BASIC).InfoS("fis-payload.payloadSize", "err", err)
		return ps, TransportStatus(PT_ERR_DRIVERFAILED)
	}
	klog.V(DBG_LVL_DETAIL).InfoS("fis-payload.payloadSize", "in", ps.Large_Input_Payload_Size, "out", ps.Large_Output_Payload_Size, "rw", ps.RW_Size)
	return ps, StatusSuccess
}

// writeLargePayload moves data into the large input payload area.
func writeLargePayload(ctx context.Context, mb Mailbox, data []byte) CompositeStatus {
	ps, st := payloadSize(ctx, mb)
	if !st.IsSuccess() {
		return st
	}
	size := uint32(len(data))
	if ps.RW_Size == 0 || ps.Large_Input_Payload_Size < size {
		klog.V(DBG_LVL_BASIC).InfoS("fis-payload.writeLargePayload capacity", "size", size, "capacity", ps.Large_Input_Payload_Size, "rw", ps.RW_Size)
		return TransportStatus(PT_ERR_UNKNOWN)
	}

	code := mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_WRITE_LARGE_PAYLOAD_INPUT)
	var moved uint32
	for _, chunk := range chunkPlan(size, ps.RW_Size) {
		in := append(structtoByte(chunk), data[chunk.Offset:chunk.Offset+chunk.Size]...)
		klog.V(DBG_LVL_DEEP_DETAIL).InfoS("fis-payload.writeLargePayload", "offset", chunk.Offset, "size", chunk.Size)
		if _, st := mb.Exchange(ctx, code, in, 0); !st.IsSuccess() {
			return st
		}
		moved += chunk.Size
	}
	if moved != size {
		return TransportStatus(PT_ERR_UNKNOWN)
	}
	return StatusSuccess
}

// readLargePayload moves size bytes out of the large output payload area.
func readLargePayload(ctx context.Context, mb Mailbox, size int) ([]byte, CompositeStatus) {
	ps, st := payloadSize(ctx, mb)
	if !st.IsSuccess() {
		return nil, st
	}
	if ps.RW_Size == 0 || ps.Large_Output_Payload_Size < uint32(size) {
		klog.V(DBG_LVL_BASIC).InfoS("fis-payload.readLargePayload capacity", "size", size, "capacity", ps.Large_Output_Payload_Size, "rw", ps.RW_Size)
		return nil, TransportStatus(PT_ERR_UNKNOWN)
	}

	code := mailboxCode(BIOS_EMULATED_COMMAND, SUBOP_READ_LARGE_PAYLOAD_OUTPUT)
	data := make([]byte, 0, size)
	for _, chunk := range chunkPlan(uint32(size), ps.RW_Size) {
		klog.V(DBG_LVL_DEEP_DETAIL).InfoS("fis-payload.readLargePayload", "offset", chunk.Offset, "size", chunk.Size)
		out, st := mb.Exchange(ctx, code, structtoByte(chunk), int(chunk.Size))
		if !st.IsSuccess() {
			return nil, st
		}
		if len(out) != int(chunk.Size) {
			return nil, TransportStatus(PT_ERR_DRIVERFAILED)
		}
		data = append(data, out...)
	}
	if len(data) != size {
		return nil, TransportStatus(PT_ERR_UNKNOWN)
	}
	return data, StatusSuccess
}
