package graphql

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/malexstudio/site_api/internal/logging"
)

//go:embed schema.graphql
var schemaSDL string

// Resolver handles one top-level field. Resolvers never return Go errors
// to the transport: every outcome is already shaped as a Response.
type Resolver func(ctx context.Context, args map[string]any) *Response

// Executor is a thin GraphQL layer: it parses and validates the incoming
// query against the SDL schema and dispatches each top-level field to a
// registered resolver. No sub-selection execution happens here; resolvers
// return the whole response envelope.
type Executor struct {
	schema    *ast.Schema
	resolvers map[string]Resolver
}

func NewExecutor() *Executor {
	return &Executor{
		schema:    gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL}),
		resolvers: map[string]Resolver{},
	}
}

// Register binds a resolver to a top-level field name.
func (e *Executor) Register(field string, r Resolver) {
	e.resolvers[field] = r
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Handle serves one POST /graphql call.
func (e *Executor) Handle(c echo.Context) error {
	var req request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": []echo.Map{{"message": "invalid body"}}})
	}

	doc, parseErr := parser.ParseQuery(&ast.Source{Input: req.Query})
	if parseErr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": []echo.Map{{"message": parseErr.Error()}}})
	}
	if errs := validator.Validate(e.schema, doc); len(errs) > 0 {
		messages := make([]echo.Map, 0, len(errs))
		for _, err := range errs {
			messages = append(messages, echo.Map{"message": err.Message})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": messages})
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": []echo.Map{{"message": "operation not found"}}})
	}

	ctx := WithRequestInfo(c.Request().Context(), RequestInfo{
		Authorization: c.Request().Header.Get(echo.HeaderAuthorization),
		RemoteIP:      c.RealIP(),
	})
	l := logging.FromContext(ctx)

	data := map[string]any{}
	for _, sel := range op.SelectionSet {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		key := field.Alias
		if key == "" {
			key = field.Name
		}
		resolver, ok := e.resolvers[field.Name]
		if !ok {
			l.Error("unresolved_field", "field", field.Name)
			data[key] = ServerFailure()
			continue
		}
		data[key] = resolver(ctx, field.ArgumentMap(req.Variables))
	}

	return c.JSON(http.StatusOK, echo.Map{"data": data})
}
