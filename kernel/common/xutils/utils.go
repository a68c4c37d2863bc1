package xutils

import (
	"os"

	"github.com/xuperchain/xstake/lib/utils"
)

const (
	XEnvVarRootPath = "X_ROOT_PATH"
)

// GetXRootPath returns X_ROOT_PATH when it is set and points at an existing directory.
func GetXRootPath() string {
	rtPath := os.Getenv(XEnvVarRootPath)
	if rtPath != "" && utils.FileIsExist(rtPath) {
		return rtPath
	}

	return ""
}

// GetCurRootDir returns the parent of the executable's directory.
func GetCurRootDir() string {
	return utils.GetCurRootDir()
}
