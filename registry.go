package toolcall

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// registered is one registry entry. def is the registry's own copy of the definition and
// schema is its argument schema, compiled once at registration.
type registered struct {
	raw    Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	tool   Tool // wrapped with middlewares, used for execution
	def    *Definition
	schema *jsv.Schema
}

// Registry is a concurrent store of tools plus a category index. Writers (Register, Unregister,
// Clear, AddToCategory, RemoveFromCategory, Use) hold the lock only for the map mutation; tool
// execution never runs under the lock.
//
// Unregister removes the tool from every category, so category members always exist in the
// tool map.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]*registered
	categories  map[string][]string
	middlewares []Middleware
	opts        registryOptions
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		tools:      make(map[string]*registered),
		categories: make(map[string][]string),
		opts:       o,
	}
}

// Register validates the tool's definition, compiles its argument schema and adds it. It fails
// with a ConfigError wrapping ErrInvalidDefinition or ErrDuplicateTool; nothing is mutated on failure. Concurrent
// registrations of one name yield exactly one success. Tags from ToolMetadata become
// category memberships.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return configErrorf(ErrInvalidDefinition, "tool must not be nil")
	}
	def := t.Definition()
	if def == nil {
		return configErrorf(ErrInvalidDefinition, "tool definition must not be nil")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	def = def.Clone()
	schema, err := def.CompileSchema()
	if err != nil {
		return configErrorf(ErrInvalidDefinition, "tool '%s': compile schema: %v", def.Name, err)
	}
	var tags []string
	if tm, ok := t.(ToolMetadata); ok {
		tags = tm.Tags()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return configErrorf(ErrDuplicateTool, "tool with name '%s' is already registered", def.Name)
	}
	r.tools[def.Name] = &registered{raw: t, tool: r.wrap(t), def: def, schema: schema}
	for _, tag := range tags {
		if tag != "" {
			r.addToCategoryLocked(tag, def.Name)
		}
	}
	r.opts.logger.Debug().Str("tool", def.Name).Strs("tags", tags).Msg("tool registered")
	return nil
}

// wrap applies the stored middlewares (first is outermost). Caller holds r.mu.
func (r *Registry) wrap(t Tool) Tool {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		t = r.middlewares[i](t)
	}
	return t
}

// Definition returns a copy of the named tool's definition, or (nil, false) if not found.
func (r *Registry) Definition(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return e.def.Clone(), true
}

// HasTool reports whether a tool with the given name is registered.
func (r *Registry) HasTool(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.tools)
}

// Definitions returns copies of all definitions, sorted by name for deterministic export.
func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.tools))
	for _, name := range sortedKeys(r.tools) {
		out = append(out, r.tools[name].def.Clone())
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// IsEmpty reports whether no tools are registered.
func (r *Registry) IsEmpty() bool { return r.Len() == 0 }

// Unregister removes the named tool and its category memberships. It reports whether a tool was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)
	for category, members := range r.categories {
		members = slices.DeleteFunc(members, func(m string) bool { return m == name })
		if len(members) == 0 {
			delete(r.categories, category)
		} else {
			r.categories[category] = members
		}
	}
	r.opts.logger.Debug().Str("tool", name).Msg("tool unregistered")
	return true
}

// Clear removes every tool and category.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = make(map[string]*registered)
	r.categories = make(map[string][]string)
	r.opts.logger.Debug().Msg("registry cleared")
}

// AddToCategory adds a registered tool to a category. It fails with a ConfigError if the
// category is empty or the tool is not registered. Adding the same pair twice is a no-op.
func (r *Registry) AddToCategory(category, toolName string) error {
	if category == "" {
		return configErrorf(ErrConfig, "category name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[toolName]; !ok {
		return configErrorf(ErrToolNotFound, "tool '%s' not found in registry", toolName)
	}
	r.addToCategoryLocked(category, toolName)
	return nil
}

func (r *Registry) addToCategoryLocked(category, toolName string) {
	members := r.categories[category]
	if slices.Contains(members, toolName) {
		return
	}
	r.categories[category] = append(members, toolName)
	r.opts.logger.Debug().Str("category", category).Str("tool", toolName).Msg("tool added to category")
}

// RemoveFromCategory removes a tool from a category and reports whether it was a member.
func (r *Registry) RemoveFromCategory(category, toolName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.categories[category]
	if !ok || !slices.Contains(members, toolName) {
		return false
	}
	members = slices.DeleteFunc(slices.Clone(members), func(m string) bool { return m == toolName })
	if len(members) == 0 {
		delete(r.categories, category)
	} else {
		r.categories[category] = members
	}
	return true
}

// ToolsInCategory returns the tool names in a category in insertion order; empty if unknown.
func (r *Registry) ToolsInCategory(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.categories[category]...)
}

// CategoryNames returns all category names, sorted.
func (r *Registry) CategoryNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.categories)
}

// CategoryDefinitions returns copies of the definitions of the tools in a category.
func (r *Registry) CategoryDefinitions(category string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.categories[category]
	out := make([]*Definition, 0, len(members))
	for _, name := range members {
		if e, ok := r.tools[name]; ok {
			out = append(out, e.def.Clone())
		}
	}
	return out
}

// JSONSchema returns the function-calling document for every registered tool, sorted by
// name so repeated calls on an unmodified registry are identical:
//
//	{"tools": [{"type": "function", "function": {"name", "description", "parameters"}}], "tool_choice": "auto"}
func (r *Registry) JSONSchema() map[string]any {
	defs := r.Definitions()
	tools := make([]any, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        def.Name,
				"description": def.Description,
				"parameters":  def.JSONSchema(),
			},
		})
	}
	return map[string]any{
		"tools":       tools,
		"tool_choice": "auto",
	}
}

// lookup returns a snapshot of the named entry taken under the read lock, so validation and
// invocation use the same tool and definition even if the name is re-registered meanwhile.
// Callers must not mutate the definition. An entry without a compiled schema is an
// InternalError.
func (r *Registry) lookup(name string) (registered, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	if !ok {
		return registered{}, false, nil
	}
	if e.schema == nil || e.tool == nil {
		return registered{}, true, &InternalError{Err: fmt.Errorf("registry entry for tool '%s' is incomplete", name)}
	}
	return *e, true, nil
}

// execute is the only path that runs tool logic by name; Executor wraps the same call with
// validation and limits. An unknown name is a ConfigError; any error from the tool becomes
// an Error result.
func (r *Registry) execute(ctx context.Context, name string, args Arguments) (*Result, error) {
	e, ok, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, configErrorf(ErrToolNotFound, "tool '%s' not found", name)
	}
	return callTool(ctx, e.tool, args), nil
}

// callTool runs t outside any registry lock and converts its error into an Error result.
func callTool(ctx context.Context, t Tool, args Arguments) *Result {
	res, err := t.Execute(ctx, args)
	if err != nil {
		return ResultFromError(err)
	}
	if res == nil {
		return ResultFromError(nil)
	}
	return res
}
