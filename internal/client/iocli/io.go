package iocli

//go:generate moq -out io_mock.go . IO

// IO is the terminal the CLI talks to
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadSecret reads a line without echo when attached to a terminal
	ReadSecret(prompt string) (string, error)
}
