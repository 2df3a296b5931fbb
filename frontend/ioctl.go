package frontend

import (
	"fmt"
	"syscall"

	"github.com/w1xm/diseqc_interface/diseqc"
)

// Request numbers use the generic asm-generic/ioctl.h layout
// (x86, arm, arm64, riscv).
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocSizeMask = 0x3fff
)

func ioc(dir, typ, nr, size uint32) uint32 {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

func iocIO(typ, nr uint32) uint32 { return ioc(iocNone, typ, nr, 0) }

func iocIOW(typ, nr, size uint32) uint32 { return ioc(iocWrite, typ, nr, size) }

func iocIOR(typ, nr, size uint32) uint32 { return ioc(iocRead, typ, nr, size) }

// Requests from <linux/dvb/frontend.h>.
var (
	FE_SET_TONE                = iocIO('o', 66)
	FE_SET_VOLTAGE             = iocIO('o', 67)
	FE_DISEQC_SEND_MASTER_CMD  = iocIOW('o', 63, diseqc.MasterCommandSize)
	FE_DISEQC_RECV_SLAVE_REPLY = iocIOR('o', 64, diseqc.SlaveReplySize)
)

// RequestName returns the symbolic name of a frontend request.
func RequestName(req uint32) string {
	switch req {
	case FE_SET_TONE:
		return "FE_SET_TONE"
	case FE_SET_VOLTAGE:
		return "FE_SET_VOLTAGE"
	case FE_DISEQC_SEND_MASTER_CMD:
		return "FE_DISEQC_SEND_MASTER_CMD"
	case FE_DISEQC_RECV_SLAVE_REPLY:
		return "FE_DISEQC_RECV_SLAVE_REPLY"
	}
	return fmt.Sprintf("ioctl(%#x)", req)
}

// RequestSize returns the argument size encoded in a request number.
func RequestSize(req uint32) int {
	return int(req>>iocSizeShift&iocSizeMask)
}

// CheckBuffer fails with EINVAL unless buf is exactly the record size req
// carries. The kernel reads and writes that many bytes through the pointer.
func CheckBuffer(req uint32, buf []byte) error {
	if size := RequestSize(req); size == 0 || len(buf) != size {
		return syscall.EINVAL
	}
	return nil
}
