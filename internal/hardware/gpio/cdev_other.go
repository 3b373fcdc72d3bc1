//go:build !linux

package gpio

import "fmt"

// CdevController is only available on Linux.
type CdevController struct{}

func NewCdev(chip string) (*CdevController, error) {
	return nil, fmt.Errorf("character device %s: %w", chip, ErrUnsupported)
}

func (c *CdevController) Setup(offset int, dir Direction, opts ...SetupOption) (Pin, error) {
	return nil, ErrUnsupported
}

func (c *CdevController) Cleanup() error {
	return nil
}
