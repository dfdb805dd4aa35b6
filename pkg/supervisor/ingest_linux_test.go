//go:build linux

package supervisor

import (
	"encoding/binary"
	"testing"
)

// buildProcEventFrame lays out a minimal nlmsghdr+cn_msg+proc_event frame:
// payloadOffset (36) bytes of header padding, what (4), cpu (4),
// timestamp_ns (8), then the union bytes given by data. The 8-byte
// timestamp_ns gap between cpu and the union is exactly what the fixed
// offset bug skipped over.
func buildProcEventFrame(what uint32, data []byte) []byte {
	const payloadOffset = 36
	buf := make([]byte, payloadOffset+16+len(data))
	le := binary.LittleEndian

	le.PutUint32(buf[payloadOffset:payloadOffset+4], what)
	le.PutUint32(buf[payloadOffset+4:payloadOffset+8], 0) // cpu
	// A nonzero timestamp_ns catches a decoder that assumes the union
	// starts right after cpu instead of after timestamp_ns too.
	le.PutUint64(buf[payloadOffset+8:payloadOffset+16], 0xdeadbeefdeadbeef)

	copy(buf[payloadOffset+16:], data)
	return buf
}

func TestDecodeProcEventFork(t *testing.T) {
	union := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint32(union[0:4], 100)   // parent_pid
	le.PutUint32(union[4:8], 100)   // parent_tgid
	le.PutUint32(union[8:12], 200)  // child_pid
	le.PutUint32(union[12:16], 201) // child_tgid

	buf := buildProcEventFrame(procEventFork, union)

	ev, ok := decodeProcEvent(buf)
	if !ok {
		t.Fatal("expected a decoded FORK event")
	}
	if ev.kind != procEventFork {
		t.Fatalf("expected kind FORK, got %d", ev.kind)
	}
	if ev.forkPid != 200 {
		t.Fatalf("expected forkPid to be the child pid 200, got %d", ev.forkPid)
	}
	if ev.forkTgid != 201 {
		t.Fatalf("expected forkTgid to be the child tgid 201, got %d", ev.forkTgid)
	}
}

func TestDecodeProcEventExit(t *testing.T) {
	union := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint32(union[0:4], 300) // process_pid
	le.PutUint32(union[4:8], 300) // process_tgid
	le.PutUint32(union[8:12], 0)  // exit_code

	buf := buildProcEventFrame(procEventExit, union)

	ev, ok := decodeProcEvent(buf)
	if !ok {
		t.Fatal("expected a decoded EXIT event")
	}
	if ev.exitPid != 300 {
		t.Fatalf("expected exitPid 300, got %d", ev.exitPid)
	}
	if ev.exitTgid != 300 {
		t.Fatalf("expected exitTgid 300, got %d", ev.exitTgid)
	}
	if ev.exitCode != 0 {
		t.Fatalf("expected exitCode 0, got %d", ev.exitCode)
	}
}

func TestDecodeProcEventUnknownKind(t *testing.T) {
	buf := buildProcEventFrame(0x2, make([]byte, 16))

	if _, ok := decodeProcEvent(buf); ok {
		t.Fatal("expected an unrecognized event kind to report !ok")
	}
}

func TestDecodeProcEventTruncatedBuffer(t *testing.T) {
	buf := buildProcEventFrame(procEventFork, make([]byte, 16))

	if _, ok := decodeProcEvent(buf[:len(buf)-4]); ok {
		t.Fatal("expected a truncated union to report !ok")
	}

	if _, ok := decodeProcEvent(buf[:10]); ok {
		t.Fatal("expected a buffer shorter than the header to report !ok")
	}
}
