// Package terminal reads passphrases from the console without echo.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPassphrase prompts on stderr and reads a passphrase from stdin.
// When stdin is a terminal the input is read without echo; otherwise a
// single line is consumed, so the tool stays scriptable.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)

		passphrase, err := term.ReadPassword(fd)

		fmt.Fprintln(os.Stderr)

		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}

		return passphrase, nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// ReadPassphraseConfirmed prompts twice and requires both entries to match.
// Used before encryption, where a typo would lock the file forever.
func ReadPassphraseConfirmed(prompt, confirmPrompt string) ([]byte, error) {
	first, err := ReadPassphrase(prompt)
	if err != nil {
		return nil, err
	}

	// Non-terminal input has no second line to compare against.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return first, nil
	}

	second, err := ReadPassphrase(confirmPrompt)
	if err != nil {
		return nil, err
	}

	if string(first) != string(second) {
		return nil, errors.New("passphrases do not match")
	}

	return first, nil
}
