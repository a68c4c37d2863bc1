package contract

import (
	"fmt"
	"regexp"
)

var (
	contractNameRegex = regexp.MustCompile("^[a-zA-Z_]{1}[0-9a-zA-Z_.]+[0-9a-zA-Z_]$")
)

const (
	contractNameMaxSize = 16
	contractNameMinSize = 4
)

// ValidContractName return error when contractName is not a valid contract name.
func ValidContractName(contractName string) error {
	size := len(contractName)
	if size > contractNameMaxSize || size < contractNameMinSize {
		return fmt.Errorf("contract name length expect [%d~%d], actual: %d",
			contractNameMinSize, contractNameMaxSize, size)
	}
	if !contractNameRegex.MatchString(contractName) {
		return fmt.Errorf("contract name %q does not fit the naming rule", contractName)
	}
	return nil
}
