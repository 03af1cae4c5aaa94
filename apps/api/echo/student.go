package echoapi

import (
	"fmt"
	"io"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/services/spreadsheet"
)

const rosterFileField = "file"

type studentApi struct {
	svc        student.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := studentApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	// admin-only endpoints
	sg := g.Group("/students", jwt, adminMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/export", api.export)
	sg.POST("/import", api.bulkImport)
	sg.GET("/:id", api.retrieve)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrEmailExists:
			return core.NewValidationError(nil, core.FieldError{Field: "email", Error: err.Error()})
		case student.ErrRegNumExists:
			return core.NewValidationError(nil, core.FieldError{Field: "registration_number", Error: err.Error()})
		}
		return errors.Wrap(err, "creating student")
	}

	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.Query(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) export(ctx echo.Context) error {
	students, err := api.svc.Query(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	buf, err := spreadsheet.WriteRoster(students)
	if err != nil {
		return errors.Wrap(err, "writing roster")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="students.xlsx"`)
	return ctx.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// bulkImport imports a roster spreadsheet (csv/xlsx) uploaded as multipart
// form data. Rows are imported best-effort; the per-row outcome report is
// always returned with a 200 as long as the file itself could be processed.
func (api *studentApi) bulkImport(ctx echo.Context) error {
	fh, err := ctx.FormFile(rosterFileField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: rosterFileField, Error: "a roster file is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded roster")
	}
	defer func() { _ = f.Close() }()

	contents, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading uploaded roster")
	}

	rows, err := spreadsheet.ParseTable(contents, fh.Filename)
	if err != nil {
		if errors.Cause(err) == spreadsheet.ErrUnsupportedFormat {
			return core.NewValidationError(nil, core.FieldError{
				Field: rosterFileField,
				Error: fmt.Sprintf("unsupported file format: %s", fh.Filename),
			})
		}
		return errors.Wrap(err, "parsing roster")
	}

	report, err := api.svc.BulkImport(ctx.Request().Context(), rows)
	if err != nil {
		if errors.Cause(err) == student.ErrEmptyTable {
			return core.NewValidationError(nil, core.FieldError{Field: rosterFileField, Error: err.Error()})
		}
		return errors.Wrap(err, "importing students")
	}

	return ctx.JSON(http.StatusOK, report)
}
