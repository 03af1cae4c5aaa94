package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/darasa/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	stuSvc   student.ServiceInterface
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addstudent -email EMAIL -fullname NAME -regnum NUMBER -year N -semester N -section S [-branch B] [-phone P] - register a student")
	fmt.Println("  importstudents -file FILE - bulk import students from a csv/xlsx roster")
	fmt.Println("  migrate COMMAND [args] - run DB migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentEmail := addStudentCmd.String("email", "", "The student's email. The password will be prompted next.")
	addStudentName := addStudentCmd.String("fullname", "", "The student's full name.")
	addStudentRegNum := addStudentCmd.String("regnum", "", "The student's registration number.")
	addStudentBranch := addStudentCmd.String("branch", "", "The student's branch. Defaults to "+student.DefaultBranch+".")
	addStudentYear := addStudentCmd.Int("year", 0, "The student's year of study.")
	addStudentSemester := addStudentCmd.Int("semester", 0, "The student's current semester.")
	addStudentSection := addStudentCmd.String("section", "", "The student's section.")
	addStudentPhone := addStudentCmd.String("phone", "", "The student's phone number.")

	importStudentsCmd := flag.NewFlagSet("importstudents", flag.ExitOnError)
	importStudentsFile := importStudentsCmd.String("file", "", "Path to the roster file (csv/xlsx).")

	switch args[1] {
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(student.NewStudent{
			Email:              *addStudentEmail,
			Password:           string(pwd),
			FullName:           *addStudentName,
			RegistrationNumber: *addStudentRegNum,
			Branch:             *addStudentBranch,
			Year:               *addStudentYear,
			Semester:           *addStudentSemester,
			Section:            *addStudentSection,
			PhoneNumber:        *addStudentPhone,
		})
	case "importstudents":
		if err := importStudentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importStudentsFile == "" {
			importStudentsCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importStudentsFile)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
