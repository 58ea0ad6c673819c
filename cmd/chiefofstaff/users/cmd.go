package users

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrebq/chiefofstaff/internal/app"
	"github.com/andrebq/chiefofstaff/internal/cmdflags"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage users directly in the credential store",
		Subcommands: []*cli.Command{
			registerCmd(),
			whoamiCmd(),
		},
	}
}

func registerCmd() *cli.Command {
	layer := cmdflags.Passwords()
	var email string
	var fullName string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from the terminal or stdin)",
		Flags: append(layer.Flags(),
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user to register",
				Destination: &email,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "full-name",
				Usage:       "Full name of the user",
				Destination: &fullName,
			},
		),
		Action: func(c *cli.Context) error {
			cfg, ctx, err := layer.Setup(c)
			if err != nil {
				return err
			}
			passwd, err := readPassword(c.App.Reader, c.App.ErrWriter)
			if err != nil {
				return err
			}
			a, err := app.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			var name *string
			if c.IsSet("full-name") {
				name = &fullName
			}
			user, err := a.Service.Register(ctx, email, passwd, name)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, user.Public())
		},
	}
}

func whoamiCmd() *cli.Command {
	layer := cmdflags.Database()
	var token string
	return &cli.Command{
		Name:  "whoami",
		Usage: "Print the user holding a session token",
		Flags: append(layer.Flags(),
			&cli.StringFlag{
				Name:        "token",
				Usage:       "Session token to resolve",
				EnvVars:     []string{"COS_SESSION_TOKEN"},
				Destination: &token,
				Required:    true,
			},
		),
		Action: func(c *cli.Context) error {
			cfg, ctx, err := layer.Setup(c)
			if err != nil {
				return err
			}
			a, err := app.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			user, err := a.Service.Authenticate(ctx, token)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, user.Public())
		},
	}
}

// readPassword prompts without echo when stdin is a terminal and reads a
// single line otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		buf, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("unable to read password, cause %w", err)
		}
		return string(buf), nil
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errors.New("missing password from stdin")
	}
	passwd := strings.TrimRight(sc.Text(), "\r")
	if len(passwd) == 0 {
		return "", errors.New("missing password from stdin")
	}
	return passwd, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
