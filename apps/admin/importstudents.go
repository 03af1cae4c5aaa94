package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/darasa/services/spreadsheet"
)

func (cli *commandLine) importStudents(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rows, err := spreadsheet.ParseTable(contents, path)
	if err != nil {
		return err
	}

	report, err := cli.stuSvc.BulkImport(context.Background(), rows)
	if err != nil {
		return err
	}

	fmt.Printf("%d imported, %d failed\n", report.Success, report.Failed)
	for _, e := range report.Errors {
		fmt.Printf("- %s: %s\n", e.Reference, e.Error)
	}
	return nil
}
