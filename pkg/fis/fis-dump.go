// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the dump of raw command responses and their replay
package fis

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// RecordedExchange is one raw exchange captured from a transport.
type RecordedExchange struct {
	Handle      DeviceHandle `yaml:"handle"`
	Opcode      uint8        `yaml:"opcode"`
	SubOpcode   uint8        `yaml:"sub_opcode"`
	Status      uint32       `yaml:"status"`
	Output      string       `yaml:"output,omitempty"`       // base64
	LargeOutput string       `yaml:"large_output,omitempty"` // base64
}

func encodePayload(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

func decodePayload(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

// Recording is an ordered list of captured exchanges.
type Recording struct {
	Exchanges []RecordedExchange `yaml:"exchanges"`
}

// SaveRecording writes r as yaml to path.
func SaveRecording(fs afero.Fs, path string, r *Recording) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "fis-dump.SaveRecording")
	}
	if err := afero.WriteFile(fs, path, b, 0o644); err != nil {
		return errors.Wrapf(err, "fis-dump.SaveRecording %s", path)
	}
	klog.V(DBG_LVL_INFO).InfoS("fis-dump.SaveRecording", "path", path, "exchanges", len(r.Exchanges))
	return nil
}

// LoadRecording reads a recording written by SaveRecording.
func LoadRecording(fs afero.Fs, path string) (*Recording, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "fis-dump.LoadRecording %s", path)
	}
	r := &Recording{}
	if err := yaml.Unmarshal(b, r); err != nil {
		return nil, errors.Wrapf(err, "fis-dump.LoadRecording %s", path)
	}
	return r, nil
}

// Recorder is a Transport that captures every exchange of the wrapped transport.
type Recorder struct {
	next Transport

	mu  sync.Mutex
	rec Recording
}

func NewRecorder(next Transport) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Execute(ctx context.Context, req *Request) (*Response, CompositeStatus) {
	resp, st := r.next.Execute(ctx, req)
	ex := RecordedExchange{
		Handle:    req.Handle,
		Opcode:    req.Opcode,
		SubOpcode: req.SubOpcode,
		Status:    st.Word(),
	}
	if resp != nil {
		ex.Output = encodePayload(resp.Output)
		ex.LargeOutput = encodePayload(resp.LargeOutput)
	}
	r.mu.Lock()
	r.rec.Exchanges = append(r.rec.Exchanges, ex)
	r.mu.Unlock()
	return resp, st
}

// Recording returns a copy of the exchanges captured so far.
func (r *Recorder) Recording() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Recording{Exchanges: append([]RecordedExchange(nil), r.rec.Exchanges...)}
}

// ReplayTransport answers requests from a recording. The last exchange recorded for a
// handle and command wins. Unknown requests report a bad device handle.
type ReplayTransport struct {
	exchanges map[replayKey]RecordedExchange
}

type replayKey struct {
	handle DeviceHandle
	code   uint16
}

func NewReplayTransport(r *Recording) *ReplayTransport {
	t := &ReplayTransport{exchanges: map[replayKey]RecordedExchange{}}
	for _, ex := range r.Exchanges {
		t.exchanges[replayKey{ex.Handle, mailboxCode(ex.Opcode, ex.SubOpcode)}] = ex
	}
	return t
}

func (t *ReplayTransport) Execute(ctx context.Context, req *Request) (*Response, CompositeStatus) {
	ex, ok := t.exchanges[replayKey{req.Handle, mailboxCode(req.Opcode, req.SubOpcode)}]
	if !ok {
		klog.V(DBG_LVL_INFO).InfoS("fis-dump.Replay no exchange", "handle", hex(uint32(req.Handle)), "opcode", hex(mailboxCode(req.Opcode, req.SubOpcode)))
		return nil, TransportStatus(PT_ERR_BADDEVICEHANDLE)
	}
	st := DecodeStatus(ex.Status)
	if !st.IsSuccess() {
		return nil, st
	}
	out, err := decodePayload(ex.Output)
	if err != nil {
		klog.V(DBG_LVL_BASIC).InfoS("fis-dump.Replay output", "err", err)
		return nil, TransportStatus(PT_ERR_DRIVERFAILED)
	}
	large, err := decodePayload(ex.LargeOutput)
	if err != nil {
		klog.V(DBG_LVL_BASIC).InfoS("fis-dump.Replay large output", "err", err)
		return nil, TransportStatus(PT_ERR_DRIVERFAILED)
	}
	return &Response{Output: out, LargeOutput: large}, st
}
