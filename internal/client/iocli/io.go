// Package iocli ввод и вывод командной строки клиента.
package iocli

import "io"

//go:generate moq -out io_mock.go . IO

// IO ввод и вывод команд
type IO interface {
	io.Writer
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
