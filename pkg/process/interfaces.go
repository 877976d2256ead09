package process

import (
	"io"
	"os"
)

// PTY defines the operations the manager needs from a pseudo-terminal
// backed process.
type PTY interface {
	Start(command string, args []string, env []string) error
	Wait() error
	ProcessState() *os.ProcessState
	Process() *os.Process
	CopyIO(stdin io.Reader, stdout io.Writer, handler func([]byte)) error
	// Write sends input to the child as if typed.
	Write(p []byte) (int, error)
	Stop() error
}
