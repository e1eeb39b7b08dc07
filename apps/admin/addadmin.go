package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/account"
)

// addAdmin creates an ADMIN account; the API never does, self-registration is
// limited to the non-admin roles.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()

	data := account.NewAdmin{
		Name:     name,
		Email:    email,
		Password: pwd,
	}
	if err := data.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.CreateAdmin(ctx, data)
	if err != nil {
		return err
	}
	fmt.Printf("admin account %q created\n", usr.Email)
	return nil
}
