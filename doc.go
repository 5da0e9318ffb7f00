// Package toolcall is the tool-calling core of an LLM orchestration system: it describes tools
// to a model, validates the arguments the model produces, and executes tools safely under a
// time bound, returning structured results the conversation layer can feed back to the model.
//
// # Overview
//
// Pipeline: Definition (name, description, typed Parameters) + logic → Tool → Registry →
// Executor (lookup, validate, time-bound invoke, annotate) → Result.
//
// Tools can be written three ways:
//
//   - implement the Tool interface directly;
//   - NewTool / NewToolFunc: a Definition plus a Handler function;
//   - NewTypedTool: a typed function whose argument struct is reflected into a Definition.
//
// # Key concepts
//
//   - Closed schema: arguments are validated against the compiled Definition.JSONSchema, so the
//     schema a model sees is the one enforced. Unknown keys, missing required parameters, wrong
//     JSON kinds and violated constraints are rejected before a tool runs.
//   - Errors as data: validation failures, timeouts, tool errors and recovered panics come back
//     as Error results with a typed ToolError. Only an unknown tool (ErrToolNotFound), a closed
//     executor (ErrShutdown) or a broken registry entry (InternalError) is a call-level error.
//   - Categories: the Registry keeps a name index of categories; unregistering a tool removes it
//     from every category.
//   - Concurrency: Registry and Executor are safe for concurrent use and never hold a lock while
//     a tool runs.
//
// # Example
//
//	def := toolcall.NewDefinition("greet", "Greets a person").
//	    WithParameter(toolcall.NewParameter("name", toolcall.TypeString).AsRequired())
//	greet := toolcall.NewToolFunc(def, func(_ context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
//	    name, _ := args.String("name")
//	    return toolcall.NewSuccess(map[string]any{"greeting": "Hello, " + name}), nil
//	})
//	reg := toolcall.NewRegistry()
//	if err := reg.Register(greet); err != nil { ... }
//	exec := toolcall.NewExecutor(reg, toolcall.WithDefaultTimeout(5*time.Second))
//	res, err := exec.Execute(ctx, "greet", toolcall.Arguments{"name": "Ada"})
//
// Ready-made tools live in toolkits/ (builtin, mathtool, timetool, httptool, sqltool); metrics
// and tracing integrations live in ext/ (toolcallprom, toolcallotel).
package toolcall
