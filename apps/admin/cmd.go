package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrRepo    user.Repository
	sectionSvc *section.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -email EMAIL [-admin] [-faculty] - create or update an active user. The password will be prompted next.")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  migrate COMMAND [ARGS...] - run a database migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Println("  checkslot -faculty ID -room ID -day DAY -start HH:MM -end HH:MM [-section ID] - check a time slot against the saved schedules")
}

func (cli *commandLine) command(args []string) string {
	if len(args) < 2 {
		return "admin"
	}
	return args[1]
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every role to the user.")
	addUserFaculty := addUserCmd.Bool("faculty", false, "Make the user a faculty member.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	checkSlotCmd := flag.NewFlagSet("checkslot", flag.ContinueOnError)
	checkSlotFaculty := checkSlotCmd.String("faculty", "", "The faculty member's ID.")
	checkSlotRoom := checkSlotCmd.String("room", "", "The room's ID.")
	checkSlotDay := checkSlotCmd.String("day", "", "The day of the week, e.g. MONDAY.")
	checkSlotStart := checkSlotCmd.String("start", "", "The start time (HH:MM).")
	checkSlotEnd := checkSlotCmd.String("end", "", "The end time (HH:MM).")
	checkSlotSection := checkSlotCmd.String("section", "", "The section being edited, if any. Its own slots are ignored.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, *addUserAdmin, *addUserFaculty)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "checkslot":
		if err := checkSlotCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.checkSlot(section.TimeSlotRequest{
			Candidate: scheduleCandidate(*checkSlotDay, *checkSlotStart, *checkSlotEnd, *checkSlotFaculty, *checkSlotRoom),
			SectionID: *checkSlotSection,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}
