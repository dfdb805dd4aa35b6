package supervisor

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// procEvent is the subset of the kernel's struct proc_event this
// ingestor cares about: the FORK and EXIT variants. Both share the same
// header layout (what, cpu, timestamp) followed by a union; only the
// fields the two variants actually use are decoded here.
type procEvent struct {
	kind      uint32
	forkPid   uint32
	forkTgid  uint32
	exitPid   uint32
	exitTgid  uint32
	exitCode  uint32
}

const (
	procEventFork = 1
	procEventExit = 0x80000000

	// cnIdxProc/cnValProc identify the process-events connector
	// multicast group within CN_NETLINK; PROC_CN_MCAST_LISTEN/IGNORE
	// (de)register interest in it.
	cnIdxProc = 0x1
	cnValProc = 0x1

	procCnMcastListen = 1
	procCnMcastIgnore = 2

	// nlmsghdr + cn_msg + the largest union member the ingestor sends
	// or receives (an enum for the subscribe control message, a full
	// proc_event for a notification), rounded up generously; the kernel
	// never sends more than this on this connector.
	ingestBufSize = 512
)

// ingestor listens on the kernel's process-connector netlink socket for
// process FORK/EXIT notifications and drives the dispatch layer from
// them. Exactly one ingestor runs per Supervisor, on its own goroutine,
// and is released promptly by writing to shutdownFD.
type ingestor struct {
	sv         *Supervisor
	sock       int
	epfd       int
	shutdownFD int
}

func newIngestor(sv *Supervisor) (*ingestor, error) {
	sock, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM, unix.NETLINK_CONNECTOR)
	if err != nil {
		return nil, fmt.Errorf("open netlink socket: %w", err)
	}

	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: cnIdxProc, Pid: uint32(os.Getpid())}
	if err := unix.Bind(sock, addr); err != nil {
		unix.Close(sock)
		return nil, fmt.Errorf("bind netlink socket: %w", err)
	}

	if err := unix.SetNonblock(sock, true); err != nil {
		unix.Close(sock)
		return nil, fmt.Errorf("set nonblocking: %w", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		unix.Close(sock)
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	shutdownFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		unix.Close(sock)
		return nil, fmt.Errorf("eventfd: %w", err)
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, sock, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(sock)}); err != nil {
		unix.Close(shutdownFD)
		unix.Close(epfd)
		unix.Close(sock)
		return nil, fmt.Errorf("epoll_ctl add socket: %w", err)
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, shutdownFD, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(shutdownFD)}); err != nil {
		unix.Close(shutdownFD)
		unix.Close(epfd)
		unix.Close(sock)
		return nil, fmt.Errorf("epoll_ctl add eventfd: %w", err)
	}

	return &ingestor{sv: sv, sock: sock, epfd: epfd, shutdownFD: shutdownFD}, nil
}

func (in *ingestor) subscribe(enable bool) error {
	op := uint32(procCnMcastIgnore)
	if enable {
		op = procCnMcastListen
	}
	msg := encodeSubscribeMsg(op)
	_, err := unix.Write(in.sock, msg)
	return err
}

// run is the event manager loop: wait on epoll for readiness on either
// the netlink socket or the shutdown eventfd, and dispatch accordingly.
// It returns once the shutdown descriptor has been written to.
func (in *ingestor) run() {
	events := make([]unix.EpollEvent, 16)
	buf := make([]byte, ingestBufSize)

	for {
		n, err := unix.EpollWait(in.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			in.sv.logger.Errorw("epoll_wait failed", "error", err)
			return
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)

			if fd == in.shutdownFD {
				in.sv.logger.Debugw("ingestor received shutdown wake")
				return
			}

			for {
				m, err := unix.Read(fd, buf)
				if err != nil {
					if err == unix.EAGAIN {
						break
					}
					if err == unix.EINTR {
						continue
					}
					in.sv.logger.Errorw("netlink recv failed", "error", err)
					return
				}
				if m == 0 {
					return
				}

				ev, ok := decodeProcEvent(buf[:m])
				if !ok {
					continue
				}
				in.sv.dispatchEvent(ev)
			}
		}
	}
}

// wake unblocks a blocked run() promptly, the same role eventfd plays in
// the C implementation this is grounded on: a single 8-byte write is
// always enough to satisfy a pending epoll_wait.
func (in *ingestor) wake() {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, _ = unix.Write(in.shutdownFD, buf[:])
}

func (in *ingestor) close() {
	unix.Close(in.shutdownFD)
	unix.Close(in.epfd)
	unix.Close(in.sock)
}

// encodeSubscribeMsg builds the nlmsghdr+cn_msg+enum frame that
// (un)subscribes this socket from the process-events multicast group.
func encodeSubscribeMsg(op uint32) []byte {
	const cnMsgLen = 4 // sizeof(enum proc_cn_mcast_op)
	const nlHdrLen = 16
	const cnMsgHdrLen = 20
	total := nlHdrLen + cnMsgHdrLen + cnMsgLen

	buf := make([]byte, total)
	le := binary.LittleEndian

	le.PutUint32(buf[0:4], uint32(total))         // nlmsg_len
	le.PutUint16(buf[4:6], unix.NLMSG_DONE)
	le.PutUint16(buf[6:8], 0)                     // nlmsg_flags
	le.PutUint32(buf[8:12], 0)                    // nlmsg_seq
	le.PutUint32(buf[12:16], uint32(os.Getpid())) // nlmsg_pid

	le.PutUint32(buf[16:20], cnIdxProc) // cn_msg.id.idx
	le.PutUint32(buf[20:24], cnValProc) // cn_msg.id.val
	le.PutUint32(buf[24:28], 0)         // cn_msg.seq
	le.PutUint32(buf[28:32], 0)         // cn_msg.ack
	le.PutUint16(buf[32:34], uint16(cnMsgLen))
	le.PutUint16(buf[34:36], 0) // cn_msg.flags

	le.PutUint32(buf[36:40], op)

	return buf
}

// decodeProcEvent extracts the fields set_event_data cares about from a
// raw nlmsghdr+cn_msg+proc_event frame. Anything that isn't a FORK or
// EXIT notification is reported as !ok, mirroring the "unhandled events"
// default case.
func decodeProcEvent(buf []byte) (procEvent, bool) {
	// nlmsghdr (16) + cn_msg header (20) = 36 bytes before the
	// proc_event payload begins.
	const payloadOffset = 36
	if len(buf) < payloadOffset+8 {
		return procEvent{}, false
	}
	le := binary.LittleEndian
	what := le.Uint32(buf[payloadOffset : payloadOffset+4])

	var ev procEvent
	ev.kind = what

	// event_data is a union; the fields used here start right after
	// what (4 bytes), cpu (4 bytes), and timestamp_ns (8 bytes).
	dataOff := payloadOffset + 16

	switch what {
	case procEventFork:
		if len(buf) < dataOff+16 {
			return procEvent{}, false
		}
		ev.forkPid = le.Uint32(buf[dataOff : dataOff+4])
		ev.forkTgid = le.Uint32(buf[dataOff+4 : dataOff+8])
		// child_pid/child_tgid follow but the dispatch layer only needs
		// the child identity, read below.
		childPid := le.Uint32(buf[dataOff+8 : dataOff+12])
		ev.forkPid = childPid
		ev.forkTgid = le.Uint32(buf[dataOff+12 : dataOff+16])
		return ev, true
	case procEventExit:
		if len(buf) < dataOff+16 {
			return procEvent{}, false
		}
		ev.exitPid = le.Uint32(buf[dataOff : dataOff+4])
		ev.exitTgid = le.Uint32(buf[dataOff+4 : dataOff+8])
		ev.exitCode = le.Uint32(buf[dataOff+8 : dataOff+12])
		return ev, true
	default:
		return procEvent{}, false
	}
}
