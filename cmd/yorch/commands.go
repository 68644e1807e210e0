package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/naveenspark/yorch/pkg/auth"
)

const (
	loginTimeout  = 30 * time.Second
	verifyTimeout = 5 * time.Second
)

var errMissingCredentials = errors.New("usuario y contraseña son obligatorios")

func newLoginCmd(configFile *string) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup(*configFile, consoleLogger)
			if err != nil {
				return err
			}
			defer d.close()

			user, pass, err := readCredentials(cmd.InOrStdin(), cmd.ErrOrStderr(), username)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
			defer cancel()
			if err := d.ctl.Login(ctx, user, pass); err != nil {
				var ae *auth.AuthError
				if errors.As(err, &ae) {
					return errors.New(ae.Message)
				}
				return err
			}

			if d.kv.Degraded() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: the session could not be saved to disk and ends with this process")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sesion iniciada como %s (expira en %s)\n", user, d.ctl.Remaining().Round(time.Second))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func newLogoutCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup(*configFile, consoleLogger)
			if err != nil {
				return err
			}
			defer d.close()

			active := d.ctl.State().IsAuthenticated
			d.ctl.Logout()
			if active {
				fmt.Fprintln(cmd.OutOrStdout(), "Sesion cerrada")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No habia una sesion activa")
			}
			return nil
		},
	}
}

func newStatusCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and backend status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup(*configFile, consoleLogger)
			if err != nil {
				return err
			}
			defer d.close()

			out := cmd.OutOrStdout()
			if d.ctl.State().IsAuthenticated {
				user := d.ctl.Username()
				if user == "" {
					user = "(desconocido)"
				}
				fmt.Fprintf(out, "Sesion: activa (%s)\n", user)
				fmt.Fprintf(out, "Expira en: %s\n", d.ctl.Remaining().Truncate(time.Second))
			} else {
				fmt.Fprintln(out, "Sesion: ninguna")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
			defer cancel()
			if err := d.api.Verify(ctx); err != nil {
				fmt.Fprintf(out, "Backend: no disponible en %s (%v)\n", d.api.BaseURL(), err)
			} else {
				fmt.Fprintf(out, "Backend: ok (%s)\n", d.api.BaseURL())
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "yorch "+version)
		},
	}
}

// readCredentials prompts on w for whatever was not given. The password is
// read without echo when in is a terminal.
func readCredentials(in io.Reader, w io.Writer, username string) (string, string, error) {
	r := bufio.NewReader(in)
	if username == "" {
		fmt.Fprint(w, "Usuario: ")
		line, err := readLine(r)
		if err != nil {
			return "", "", err
		}
		username = line
	}
	username = strings.TrimSpace(username)

	fmt.Fprint(w, "Contraseña: ")
	var password string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	} else {
		line, err := readLine(r)
		if err != nil {
			return "", "", err
		}
		password = line
	}

	if username == "" || password == "" {
		return "", "", errMissingCredentials
	}
	return username, password, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	switch {
	case err == nil, errors.Is(err, io.EOF) && line != "":
		return strings.TrimRight(line, "\r\n"), nil
	case errors.Is(err, io.EOF):
		return "", errMissingCredentials
	default:
		return "", fmt.Errorf("read input: %w", err)
	}
}
