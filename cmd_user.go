package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddFlags struct {
	fullName    string
	username    string
	role        string
	village     string
	dateOfBirth string
	gender      string
}

// userAddCmd bootstraps accounts, notably the first administrator, which
// the web interface cannot create.
var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user; the password is read from stdin",
	Example: `  printf 'pw1\n' | zatigwera user add --username jane --full-name "Jane Banda" \
      --role admin --dob 1980-04-02 --gender Female`,
	RunE: runUserAdd,
}

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&userAddFlags.fullName, "full-name", "", "full name (required)")
	f.StringVar(&userAddFlags.username, "username", "", "login name (required)")
	f.StringVar(&userAddFlags.role, "role", string(domain.RoleAdmin), "admin or reporter")
	f.StringVar(&userAddFlags.village, "village", "", "home village")
	f.StringVar(&userAddFlags.dateOfBirth, "dob", "", "date of birth, YYYY-MM-DD (required)")
	f.StringVar(&userAddFlags.gender, "gender", "", "Male or Female (required)")
	_ = userAddCmd.MarkFlagRequired("full-name")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("dob")
	_ = userAddCmd.MarkFlagRequired("gender")
	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}
	dob, err := time.Parse(domain.DateLayout, userAddFlags.dateOfBirth)
	if err != nil {
		return fmt.Errorf("--dob must be YYYY-MM-DD: %w", err)
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	users := service.NewUserService(db.Users(), service.NewPasswordHasher(cfg.Auth.BcryptCost))
	user, err := users.Register(cmd.Context(), service.NewUserInput{
		FullName:        userAddFlags.fullName,
		Username:        userAddFlags.username,
		Password:        password,
		ConfirmPassword: password,
		Village:         userAddFlags.village,
		DateOfBirth:     dob,
		Gender:          userAddFlags.gender,
		Role:            userAddFlags.role,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.Info("user created", "user", user.Username, "role", user.Role)
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", user.Role.Label(), user.Username, user.ID)
	return nil
}

// readPassword takes the first line of r as the password.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("%w: a password must be supplied on stdin", domain.ErrInvalidInput)
	}
	return password, nil
}
