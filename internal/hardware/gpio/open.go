package gpio

import (
	"fmt"
	"strings"
)

const (
	BackendCdev = "cdev"
	BackendSim  = "sim"
)

// Open returns the controller for the named backend.
func Open(backend, chip string) (Controller, error) {
	switch strings.ToLower(backend) {
	case BackendCdev, "":
		return NewCdev(chip)
	case BackendSim:
		return NewSimulator(nil), nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q (valid: %s, %s)", backend, BackendCdev, BackendSim)
	}
}
