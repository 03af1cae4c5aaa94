package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/student"
)

func (cli *commandLine) addStudent(ns student.NewStudent) error {
	if err := ns.Validate(cli.validate); err != nil {
		return err
	}

	stu, err := cli.stuSvc.Create(context.Background(), ns)
	if err != nil {
		return err
	}
	fmt.Printf("student %s registered with account %s\n", stu.Email, stu.ID)
	return nil
}
