package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"github.com/nlstn/go-storefront/internal/observability"
)

// Request is one GraphQL request.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// Result is the outcome of a request: the data that could be resolved and the
// errors raised along the way. Either may be empty.
type Result struct {
	Data   interface{}                `json:"data,omitempty"`
	Errors []gqlerrors.FormattedError `json:"errors,omitempty"`
}

// HasErrors reports whether any error was raised.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Execute parses, validates and runs req. Field errors are reported in the
// result next to whatever data could still be resolved.
func (s *Service) Execute(ctx context.Context, req Request) *Result {
	res, _ := s.execute(ctx, req, false)
	return res
}

// execute runs req. With readOnly set, mutations are refused with
// ErrMethodNotAllowed before anything is resolved.
func (s *Service) execute(ctx context.Context, req Request, readOnly bool) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	gqlSchema, logger, obs := s.snapshot()
	start := time.Now()
	hash := observability.DocumentHash(req.Query)

	doc, err := parseDocument(req.Query)
	if err != nil {
		logger.Debug("graphql document rejected",
			slog.String(observability.LogFieldDocument, hash),
			slog.String(observability.LogFieldError, err.Error()))
		return &Result{Errors: gqlerrors.FormatErrors(err)}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	opType, opName := operationOf(doc, req.OperationName)
	if readOnly && opType == observability.OpMutation {
		err := fmt.Errorf("%w: mutations must be sent with POST", ErrMethodNotAllowed)
		return &Result{Errors: gqlerrors.FormatErrors(err)}, err
	}

	ctx, span := obs.Tracer().StartOperation(ctx, opType, opName, hash)
	defer span.End()

	var res *Result
	validate := observability.StartServerTiming(ctx, "validate")
	validation := graphql.ValidateDocument(&gqlSchema, doc, nil)
	validate.Stop()
	if !validation.IsValid {
		res = &Result{Errors: validation.Errors}
	} else {
		resolve := observability.StartServerTimingWithDesc(ctx, "resolve", opType)
		out := graphql.Execute(graphql.ExecuteParams{
			Schema:        gqlSchema,
			AST:           doc,
			OperationName: req.OperationName,
			Args:          req.Variables,
			Context:       ctx,
		})
		resolve.Stop()
		res = &Result{Data: out.Data, Errors: out.Errors}
	}

	duration := time.Since(start)
	obs.Metrics().RecordOperation(ctx, opType, opName, len(res.Errors), duration)
	for _, e := range res.Errors {
		code, _ := e.Extensions["code"].(string)
		if code == "" {
			code = CodeValidation
		}
		obs.Metrics().RecordError(ctx, opType, code)
	}
	if res.HasErrors() {
		obs.Tracer().RecordError(span, errors.New(res.Errors[0].Message))
	}

	observability.LoggerWithTrace(ctx, logger).Debug("graphql operation executed",
		slog.String(observability.LogFieldOperation, opType+" "+opName),
		slog.String(observability.LogFieldDocument, hash),
		slog.Int("errors", len(res.Errors)),
		slog.Float64(observability.LogFieldDuration, float64(duration.Microseconds())/1000),
	)
	return res, nil
}

func parseDocument(query string) (*ast.Document, error) {
	return parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(query), Name: "GraphQL request"}),
	})
}

// operationOf returns the type and name of the operation that will run. Without
// a name the first operation is reported; the executor rejects a document
// holding several.
func operationOf(doc *ast.Document, name string) (opType, opName string) {
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		var n string
		if op.Name != nil {
			n = op.Name.Value
		}
		if name == "" || n == name {
			return op.Operation, n
		}
	}
	return observability.OpQuery, name
}
