// Package excellent implements the Excellent expression language used to
// interpolate values into messaging-flow templates.
//
// Templates are free text with embedded expressions introduced by a trigger
// character (default @). Two forms are recognised:
//
//	Hi @contact.first_name, you are @(contact.age + 1) next year.
//
// A bare identifier chain stops before a trailing sentence period, so
// "Hi @contact.name." keeps its period. @@ renders a literal @.
//
// # Basic Usage
//
//	evaluator := excellent.MustNew()
//	ctx, _ := excellent.NewEvaluationContext(map[string]any{
//	    "contact": map[string]any{"name": "Bob", "age": 34},
//	}, excellent.WithTimezone(time.UTC))
//
//	result := evaluator.EvaluateTemplate("Hi @contact.name!", ctx)
//	// result.Output: "Hi Bob!"
//	// result.Errors: []
//
// EvaluateTemplate never fails: an expression that cannot be evaluated stays
// in the output as written and its message is appended to Errors.
// EvaluateExpression returns the error to the caller instead.
//
// # Expressions
//
// Expressions support decimal numbers, "strings" (with "" as an embedded
// quote), TRUE and FALSE, dotted identifier paths, function calls, unary
// minus, + - * / ^, & for concatenation and = <> < <= > >= comparisons.
// Arithmetic is exact decimal arithmetic; 0.1 + 0.2 = 0.3 holds.
//
// # Functions
//
// Functions are grouped in libraries and looked up case-insensitively. The
// built-in libraries are text, math, logical, date and custom. Additional
// libraries are registered with WithLibraries:
//
//	greet := &excellent.Func{
//	    Name: "GREET", MinArgs: 1, MaxArgs: 1,
//	    Fn: func(ctx *excellent.EvaluationContext, args []excellent.Value) (excellent.Value, error) {
//	        name, err := excellent.ToText(args[0], ctx)
//	        if err != nil {
//	            return excellent.Missing(), err
//	        }
//	        return excellent.Text("Hello " + name), nil
//	    },
//	}
//	evaluator, err := excellent.New(excellent.WithLibraries(
//	    append(excellent.BuiltinLibraries(), excellent.NewLibrary("app", greet))...,
//	))
//
// An Evaluator is immutable after construction and safe for concurrent use.
package excellent
