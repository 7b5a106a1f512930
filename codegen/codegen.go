// Package codegen generates typed MCP dispatch code from a ServerDefinition.
package codegen

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"
)

const (
	mcpImportPath      = "github.com/nimbus-tools/weather-mcp"
	protocolImportPath = "github.com/nimbus-tools/weather-mcp/protocol"
)

// Generate writes the dispatch code of def as package pkgName to w.
func Generate(w io.Writer, def *ServerDefinition, pkgName string) error {
	if w == nil {
		w = os.Stdout
	}
	if pkgName == "" {
		pkgName = "mcpgen"
	}
	if err := validate(def); err != nil {
		return err
	}

	g := &generator{def: def, pkg: pkgName}
	if err := g.generate(); err != nil {
		return err
	}

	b, err := imports.Process("", []byte(g.buf.String()), &imports.Options{
		AllErrors: true,
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return fmt.Errorf("failed to format generated code: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return nil
}

func validate(def *ServerDefinition) error {
	seen := map[string]struct{}{}
	for _, t := range def.Tools {
		if t.Name == "" {
			return fmt.Errorf("tool name must not be empty")
		}
		if _, ok := seen["tool:"+t.Name]; ok {
			return fmt.Errorf("duplicate tool %q", t.Name)
		}
		seen["tool:"+t.Name] = struct{}{}
		if rt := reflect.TypeOf(t.InputSchema); rt == nil || rt.Kind() != reflect.Struct {
			return fmt.Errorf("input schema of tool %q must be a struct value", t.Name)
		}
	}
	for _, p := range def.Prompts {
		if p.Name == "" {
			return fmt.Errorf("prompt name must not be empty")
		}
		if _, ok := seen["prompt:"+p.Name]; ok {
			return fmt.Errorf("duplicate prompt %q", p.Name)
		}
		seen["prompt:"+p.Name] = struct{}{}
	}
	return nil
}

type generator struct {
	buf strings.Builder
	def *ServerDefinition

	pkg string
}

func (g *generator) generate() error {
	g.println("// Code generated by mcpgen. DO NOT EDIT.")
	g.println("")
	g.println("package " + g.pkg)
	g.println("")
	g.println("import (")
	g.println(`	"context"`)
	g.println(`	"encoding/json"`)
	g.println(`	"fmt"`)
	g.println("")
	g.printf("	mcp %q\n", mcpImportPath)
	g.printf("	%q\n", protocolImportPath)
	g.println(")")
	g.println("")

	if g.def.Capabilities.Prompts != nil {
		g.generatePromptHandlers()
		g.generatePromptList()
	}
	if g.def.Capabilities.Resources != nil {
		g.generateResourceTemplateList()
	}
	if g.def.Capabilities.Tools != nil {
		if err := g.generateToolHandlers(); err != nil {
			return err
		}
		if err := g.generateToolList(); err != nil {
			return err
		}
	}
	g.generateNewHandler()
	return nil
}

// generatePromptHandlers generates the prompt handler interface and argument types.
func (g *generator) generatePromptHandlers() {
	g.println("// ServerPromptHandler is the interface for prompt handlers.")
	g.println("type ServerPromptHandler interface {")
	for _, prompt := range g.def.Prompts {
		name := pascalCase(prompt.Name)
		g.printf("	HandlePrompt%s(ctx context.Context, req *Prompt%sRequest) (*mcp.GetPromptResult, error)\n", name, name)
	}
	g.println("}")
	g.println("")

	for _, prompt := range g.def.Prompts {
		name := pascalCase(prompt.Name)
		g.printf("// Prompt%sRequest contains input parameters for the %s prompt.\n", name, prompt.Name)
		g.printf("type Prompt%sRequest struct {\n", name)
		for _, arg := range prompt.Arguments {
			g.printf("	%s string `json:%q`\n", pascalCase(arg.Name), arg.Name+",omitempty")
		}
		g.println("}")
		g.println("")
	}
}

func (g *generator) generatePromptList() {
	g.println("// PromptList contains all available prompts.")
	g.println("var PromptList = []protocol.Prompt{")
	for _, prompt := range g.def.Prompts {
		g.println("	{")
		g.printf("		Name: %q,\n", prompt.Name)
		g.printf("		Description: %q,\n", prompt.Description)
		g.println("		Arguments: []protocol.PromptArgument{")
		for _, arg := range prompt.Arguments {
			g.printf("			{Name: %q, Description: %q, Required: %t},\n", arg.Name, arg.Description, arg.Required)
		}
		g.println("		},")
		g.println("	},")
	}
	g.println("}")
	g.println("")
}

func (g *generator) generateResourceTemplateList() {
	g.println("// ResourceTemplateList contains all available resource templates.")
	g.println("var ResourceTemplateList = []mcp.ResourceTemplate{")
	for _, rt := range g.def.ResourceTemplates {
		g.println("	{")
		g.printf("		URITemplate: %q,\n", rt.URITemplate)
		g.printf("		Name: %q,\n", rt.Name)
		g.printf("		Description: %q,\n", rt.Description)
		if rt.MimeType != "" {
			g.printf("		MimeType: %q,\n", rt.MimeType)
		}
		g.println("	},")
	}
	g.println("}")
	g.println("")
}

// generateToolHandlers generates the tool handler interface, enum types and argument types.
func (g *generator) generateToolHandlers() error {
	g.println("// ServerToolHandler is the interface for tool handlers.")
	g.println("type ServerToolHandler interface {")
	for _, tool := range g.def.Tools {
		name := pascalCase(tool.Name)
		g.printf("	HandleTool%s(ctx context.Context, req *Tool%sRequest) (*mcp.CallToolResult, error)\n", name, name)
	}
	g.println("}")
	g.println("")

	for _, tool := range g.def.Tools {
		toolName := pascalCase(tool.Name)
		enums, err := enumFields(tool)
		if err != nil {
			return err
		}

		fieldNames := make([]string, 0, len(enums))
		for name := range enums {
			fieldNames = append(fieldNames, name)
		}
		slices.Sort(fieldNames)
		for _, fieldName := range fieldNames {
			g.generateEnum(toolName+pascalCase(fieldName)+"Type", fieldName, enums[fieldName])
		}

		g.printf("// Tool%sRequest contains input parameters for the %s tool.\n", toolName, tool.Name)
		g.printf("type Tool%sRequest struct {\n", toolName)
		rt := reflect.TypeOf(tool.InputSchema)
		for i := range rt.NumField() {
			field := rt.Field(i)
			jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			fieldType := field.Type.String()
			if _, ok := enums[jsonName]; ok {
				fieldType = toolName + pascalCase(jsonName) + "Type"
			}
			g.printf("	%s %s `json:%q`\n", field.Name, fieldType, field.Tag.Get("json"))
		}
		g.println("}")
		g.println("")
	}
	return nil
}

func (g *generator) generateEnum(typeName, fieldName string, values []any) {
	typ := enumType(values)
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b any) int {
		if typ == "int" {
			return int(a.(float64)) - int(b.(float64))
		}
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})

	g.printf("// %s represents possible values for %s\n", typeName, fieldName)
	g.printf("type %s %s\n\n", typeName, typ)
	g.println("const (")
	for _, v := range sorted {
		constName := typeName + pascalCase(fmt.Sprint(v))
		if typ == "int" {
			g.printf("	%s %s = %s\n", constName, typeName, strconv.Itoa(int(v.(float64))))
		} else {
			g.printf("	%s %s = %q\n", constName, typeName, fmt.Sprint(v))
		}
	}
	g.println(")")
	g.println("")
}

func (g *generator) generateToolList() error {
	reflector := jsonschema.Reflector{}
	g.println("// JSON Schema type definitions generated from inputSchema")
	g.println("var (")
	for _, tool := range g.def.Tools {
		b, err := reflector.Reflect(tool.InputSchema).MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal input schema of %s: %w", tool.Name, err)
		}
		g.printf("	Tool%sInputSchema = json.RawMessage(`%s`)\n", pascalCase(tool.Name), b)
	}
	g.println(")")
	g.println("")

	g.println("// ToolList contains all available tools.")
	g.println("var ToolList = []protocol.Tool{")
	for _, tool := range g.def.Tools {
		g.println("	{")
		g.printf("		Name: %q,\n", tool.Name)
		g.printf("		Description: %q,\n", tool.Description)
		g.printf("		InputSchema: Tool%sInputSchema,\n", pascalCase(tool.Name))
		if a := tool.Annotations; a != nil {
			g.println("		Annotations: &protocol.ToolAnnotations{")
			if a.Title != "" {
				g.printf("			Title: %q,\n", a.Title)
			}
			for _, hint := range []struct {
				name string
				set  bool
			}{
				{"ReadOnlyHint", a.ReadOnlyHint},
				{"DestructiveHint", a.DestructiveHint},
				{"IdempotentHint", a.IdempotentHint},
				{"OpenWorldHint", a.OpenWorldHint},
			} {
				if hint.set {
					g.printf("			%s: true,\n", hint.name)
				}
			}
			g.println("		},")
		}
		g.println("	},")
	}
	g.println("}")
	g.println("")
	return nil
}

// generateNewHandler generates the NewHandler function wiring every handler into an mcp.Handler.
func (g *generator) generateNewHandler() {
	caps := g.def.Capabilities

	var params []string
	if caps.Prompts != nil {
		params = append(params, "promptHandler ServerPromptHandler")
	}
	if caps.Resources != nil {
		params = append(params, "resourceHandler mcp.ServerResourceHandler")
	}
	if caps.Tools != nil {
		params = append(params, "toolHandler ServerToolHandler")
	}
	if caps.Completions != nil {
		params = append(params, "completionHandler mcp.ServerCompletionHandler")
	}

	g.println("// NewHandler creates a new MCP handler.")
	g.println("func NewHandler(" + strings.Join(params, ", ") + ") *mcp.Handler {")
	g.println("	h := &mcp.Handler{}")
	g.println("	h.Capabilities = protocol.ServerCapabilities{")
	if caps.Prompts != nil {
		g.println("		Prompts: &protocol.PromptCapability{},")
	}
	if caps.Resources != nil {
		g.println("		Resources: &protocol.ResourceCapability{},")
	}
	if caps.Tools != nil {
		g.println("		Tools: &protocol.ToolCapability{},")
	}
	if caps.Completions != nil {
		g.println("		Completions: &protocol.CompletionsCapability{},")
	}
	if caps.Logging != nil {
		g.println("		Logging: &protocol.LoggingCapability{},")
	}
	g.println("	}")
	g.printf("	h.Implementation = protocol.Implementation{Name: %q, Version: %q}\n",
		g.def.Implementation.Name, g.def.Implementation.Version)
	if g.def.Instructions != "" {
		g.printf("	h.Instructions = %q\n", g.def.Instructions)
	}

	if caps.Prompts != nil {
		g.println("	h.Prompts = PromptList")
		g.println("	h.PromptHandler = protocol.ServerHandlerFunc[protocol.GetPromptRequestParams](func(ctx context.Context, method string, req protocol.GetPromptRequestParams) (any, error) {")
		g.println("		switch req.Name {")
		for _, prompt := range g.def.Prompts {
			name := pascalCase(prompt.Name)
			g.printf("		case %q:\n", prompt.Name)
			g.printf("			var in Prompt%sRequest\n", name)
			g.println("			if err := protocol.DecodeArguments(req.Arguments, &in); err != nil {")
			g.println("				return nil, err")
			g.println("			}")
			for _, arg := range prompt.Arguments {
				if !arg.Required {
					continue
				}
				g.printf("			if in.%s == \"\" {\n", pascalCase(arg.Name))
				g.printf("				return nil, fmt.Errorf(\"missing required argument %%q\", %q)\n", arg.Name)
				g.println("			}")
			}
			g.printf("			return promptHandler.HandlePrompt%s(ctx, &in)\n", name)
		}
		g.println("		default:")
		g.println("			return nil, fmt.Errorf(\"%w: %s\", mcp.ErrPromptNotFound, req.Name)")
		g.println("		}")
		g.println("	})")
	}

	if caps.Resources != nil {
		g.println("	h.ResourceHandler = resourceHandler")
		g.println("	h.ResourceTemplates = ResourceTemplateList")
	}

	if caps.Tools != nil {
		g.println("	h.Tools = ToolList")
		g.println("	h.ToolHandler = protocol.ServerHandlerFunc[protocol.CallToolRequestParams](func(ctx context.Context, method string, req protocol.CallToolRequestParams) (any, error) {")
		g.println("		switch req.Name {")
		for _, tool := range g.def.Tools {
			name := pascalCase(tool.Name)
			g.printf("		case %q:\n", tool.Name)
			g.printf("			var in Tool%sRequest\n", name)
			g.println("			if err := protocol.DecodeArguments(req.Arguments, &in); err != nil {")
			g.println("				return nil, err")
			g.println("			}")
			g.printf("			if err := protocol.ValidateByJSONSchema(string(Tool%sInputSchema), in); err != nil {\n", name)
			g.println("				return nil, err")
			g.println("			}")
			g.printf("			return toolHandler.HandleTool%s(ctx, &in)\n", name)
		}
		g.println("		default:")
		g.println("			return nil, fmt.Errorf(\"%w: %s\", mcp.ErrToolNotFound, req.Name)")
		g.println("		}")
		g.println("	})")
	}

	if caps.Completions != nil {
		g.println("	h.CompletionHandler = completionHandler")
	}

	g.println("	return h")
	g.println("}")
}

// enumFields returns the enum values of every property of the tool's input schema.
func enumFields(tool Tool) (map[string][]any, error) {
	reflector := jsonschema.Reflector{}
	b, err := reflector.Reflect(tool.InputSchema).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema of %s: %w", tool.Name, err)
	}
	var schema struct {
		Properties map[string]struct {
			Enum []any `json:"enum"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(b, &schema); err != nil {
		return nil, fmt.Errorf("failed to read input schema of %s: %w", tool.Name, err)
	}

	enums := make(map[string][]any)
	for name, prop := range schema.Properties {
		if len(prop.Enum) > 0 {
			enums[name] = prop.Enum
		}
	}
	return enums, nil
}

// enumType returns "int" if every value is an integral number and "string" otherwise.
func enumType(values []any) string {
	for _, v := range values {
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return "string"
		}
	}
	return "int"
}

// pascalCase converts a snake_case name to PascalCase
// e.g. "weather_query_prompt" -> "WeatherQueryPrompt"
func pascalCase(name string) string {
	name = strings.NewReplacer(";", "_", " ", "", "-", "_").Replace(name)
	words := strings.Split(name, "_")
	title := cases.Title(language.Und)
	for i, word := range words {
		words[i] = title.String(word)
	}
	return strings.Join(words, "")
}

func (g *generator) println(s string) {
	fmt.Fprintln(&g.buf, s)
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}
