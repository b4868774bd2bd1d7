package phy

type errPHY uint8

// Errors returned by the PHY layer. Errors from the MDIOBus are returned unchanged.
const (
	_ errPHY = iota // non-initialized err
	// ErrNotSupported is returned when a driver declines an operation,
	// for example an extended register it does not emulate. It does not
	// indicate a device malfunction.
	ErrNotSupported
	ErrNoDriver
	ErrInvalidAddr
	ErrInvalidConfig
	ErrDuplicateDriver
	ErrResetTimeout
	errShortBuffer
)

func (err errPHY) Error() string {
	return err.String()
}

func (err errPHY) String() string {
	switch err {
	case ErrNotSupported:
		return "operation not supported"
	case ErrNoDriver:
		return "no PHY driver"
	case ErrInvalidAddr:
		return "invalid address"
	case ErrInvalidConfig:
		return "invalid configuration"
	case ErrDuplicateDriver:
		return "driver already registered"
	case ErrResetTimeout:
		return "PHY reset timeout"
	case errShortBuffer:
		return "short buffer"
	default:
		return "errPHY(?)"
	}
}
