package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin, isFaculty bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{Email: email, CreatedAt: now}
	}

	usr.Name = name
	usr.IsActive = true
	usr.UpdatedAt = now
	switch {
	case isAdmin:
		usr.Roles = user.AllRoles
	case isFaculty:
		usr.Roles = user.FacultyRoles
	case len(usr.Roles) == 0:
		usr.Roles = user.StudentRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
