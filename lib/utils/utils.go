package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

var (
	rndMu sync.Mutex
	rnd   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// FileIsExist reports whether the named file or directory exists.
func FileIsExist(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}

	return true
}

// GenPseudoUniqId generates an id that is unique with very high probability.
// It is meant for log correlation, not for anything that needs uniqueness.
func GenPseudoUniqId() uint64 {
	nano := time.Now().UnixNano()

	rndMu.Lock()
	randNum1 := rnd.Int63()
	randNum2 := rnd.Int63()
	shift1 := rnd.Intn(16) + 2
	shift2 := rnd.Intn(8) + 1
	rndMu.Unlock()

	uId := ((randNum1 >> uint(shift1)) + (randNum2 >> uint(shift2)) + (nano >> 1)) &
		0x1FFFFFFFFFFFFF
	return uint64(uId)
}

// GenLogId generates a log id in the form <unix>_<pseudo uniq id>.
func GenLogId() string {
	return fmt.Sprintf("%d_%d", time.Now().Unix(), GenPseudoUniqId())
}

// GenTxId generates an invocation id for callers that do not bring their own.
func GenTxId() string {
	return fmt.Sprintf("%x%08x", time.Now().UnixNano(), GenPseudoUniqId())
}

// GetFuncCall returns "file:line" and the function name of the caller at callDepth.
func GetFuncCall(callDepth int) (string, string) {
	pc, file, line, ok := runtime.Caller(callDepth)
	if !ok {
		return "???:0", "???"
	}

	f := runtime.FuncForPC(pc)
	_, function := path.Split(f.Name())
	_, filename := path.Split(file)

	fline := filename + ":" + strconv.Itoa(line)
	return fline, function
}

// GetCurExecDir returns the directory of the running binary.
func GetCurExecDir() string {
	curDir, _ := filepath.Abs(filepath.Dir(os.Args[0]))
	return curDir
}

// GetCurRootDir returns the parent of the binary directory, the default root path.
func GetCurRootDir() string {
	return filepath.Dir(GetCurExecDir())
}
