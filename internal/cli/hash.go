package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Spok95/practice-fund/internal/auth"
)

func NewHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Посчитать bcrypt-хэш для ADMIN_PASSWORD_HASH",
		Long: `Печатает bcrypt-хэш пароля администратора. Без аргумента пароль читается
из первой строки stdin, чтобы не оставлять его в истории shell.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			return runHashPassword(cmd.OutOrStdout(), rootOpts, password)
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runHashPassword(out io.Writer, opts *RootOptions, password string) error {
	if password == "" {
		return errors.New("password is empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		return writeJSON(out, map[string]string{"hash": hash})
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
