package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/xuperchain/log15"
)

var (
	logOnce   sync.Once
	logMu     sync.RWMutex
	logHandle LogDriver
)

// InitLog opens the process wide log driver. Only the first call has an effect.
func InitLog(cfgFile, logDir string) error {
	var err error
	logOnce.Do(func() {
		var lc *LogConf
		lc, err = LoadLogConf(cfgFile)
		if err != nil {
			// a missing log.yaml is not fatal, run with defaults
			lc = GetDefLogConf()
			err = nil
		}

		var driver LogDriver
		driver, err = OpenLog(lc, logDir)
		if err != nil {
			return
		}

		logMu.Lock()
		logHandle = driver
		logMu.Unlock()
	})
	return err
}

// OpenLog creates a log15 logger writing a normal log and a warn/fault log under logDir.
func OpenLog(lc *LogConf, logDir string) (LogDriver, error) {
	if lc == nil {
		return nil, fmt.Errorf("log config is nil")
	}
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create log dir failed.err:%v", err)
	}
	infoFile := filepath.Join(logDir, lc.Filename+".log")
	wfFile := filepath.Join(logDir, lc.Filename+".log.wf")

	lfmt := log.LogfmtFormat()
	switch lc.Fmt {
	case "json":
		lfmt = log.JsonFormat()
	}

	xlog := log.New("module", lc.Module)
	lvLevel, err := log.LvlFromString(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level error.err:%v", err)
	}
	xlog.SetLevelLimit(lvLevel)

	var (
		nmHandler log.Handler
		wfHandler log.Handler
	)
	if lc.RotateInterval > 0 && lc.RotateBackups > 0 {
		nmHandler = log.Must.RotateFileHandler(
			infoFile, lfmt, lc.RotateInterval, lc.RotateBackups)
		wfHandler = log.Must.RotateFileHandler(
			wfFile, lfmt, lc.RotateInterval, lc.RotateBackups)
	} else {
		nmHandler = log.Must.FileHandler(infoFile, lfmt)
		wfHandler = log.Must.FileHandler(wfFile, lfmt)
	}

	if lc.Async {
		nmHandler = log.BufferedHandler(lc.BufSize, nmHandler)
		wfHandler = log.BufferedHandler(lc.BufSize, wfHandler)
	}

	// levels from lvLevel up to error go to the normal log
	nmfileh := log.BoundLvlFilterHandler(lvLevel, log.LvlError, nmHandler)
	// warn and above go to the wf log
	wffileh := log.LvlFilterHandler(log.LvlWarn, wfHandler)

	var lhd log.Handler
	if lc.Console {
		hstd := log.StreamHandler(os.Stderr, lfmt)
		lhd = log.SyncHandler(log.MultiHandler(hstd, nmfileh, wffileh))
	} else {
		lhd = log.SyncHandler(log.MultiHandler(nmfileh, wffileh))
	}
	xlog.SetHandler(lhd)

	return xlog, nil
}

// stderrDriver is used until InitLog succeeds, so that library users and
// tests can log without any config files.
func stderrDriver(module string) LogDriver {
	xlog := log.New("module", module)
	xlog.SetLevelLimit(log.LvlWarn)
	xlog.SetHandler(log.LvlFilterHandler(log.LvlWarn, log.StreamHandler(os.Stderr, log.LogfmtFormat())))
	return xlog
}

// NewLogger returns a logger for subMod. An empty logId generates one.
func NewLogger(logId string, subMod string) (*LogFitter, error) {
	logMu.RLock()
	driver := logHandle
	logMu.RUnlock()

	if driver == nil {
		driver = stderrDriver(subMod)
	}
	lf, err := NewLogFitter(driver, logId)
	if err != nil {
		return nil, err
	}
	lf.SetCommField("sub_mod", subMod)
	return lf, nil
}
