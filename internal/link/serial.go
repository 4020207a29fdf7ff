package link

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialLink is a radio modem or direct autopilot connection on a
// serial port.
type SerialLink struct {
	name string
	port serial.Port
}

// OpenSerial opens the device at the given baud rate, 8N1.
func OpenSerial(name, device string, baud int) (*SerialLink, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("link %s: open %s: %w", name, device, err)
	}
	return &SerialLink{name: name, port: port}, nil
}

// Name returns the configured link name.
func (l *SerialLink) Name() string {
	return l.name
}

// Read reads from the port.
func (l *SerialLink) Read(p []byte) (int, error) {
	return l.port.Read(p)
}

// Write writes to the port.
func (l *SerialLink) Write(p []byte) (int, error) {
	return l.port.Write(p)
}

// Close closes the port, unblocking any pending Read.
func (l *SerialLink) Close() error {
	return l.port.Close()
}
