package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/interpreter"
	"quoth/engine-go/pkg/runtime"
)

// Program is a parsed program file: a named forest of expression trees
// evaluated in order.
type Program struct {
	Path        string
	Name        string
	Expressions []ast.Node
}

type programFile struct {
	Name        string `yaml:"name"`
	Expressions []any  `yaml:"expressions"`
}

// LoadProgram parses a *.qx.yml program file from disk.
func LoadProgram(path string) (*Program, error) {
	if path == "" {
		return nil, fmt.Errorf("program: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("program: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("program: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw programFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("program: %s is empty", absPath)
		}
		return nil, fmt.Errorf("program: parse %s: %w", absPath, err)
	}
	if len(raw.Expressions) == 0 {
		return nil, fmt.Errorf("program: %s declares no expressions", absPath)
	}

	program := &Program{
		Path: absPath,
		Name: strings.TrimSpace(raw.Name),
	}
	if program.Name == "" {
		program.Name = strings.TrimSuffix(filepath.Base(absPath), ".qx.yml")
	}
	for idx, raw := range raw.Expressions {
		node, err := decodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("program: expression %d: %w", idx, err)
		}
		program.Expressions = append(program.Expressions, node)
	}
	tracer().Infof("loaded program %q (%d expression(s))", program.Name, len(program.Expressions))
	return program, nil
}

// decodeNode turns one decoded YAML mapping into an expression node. The
// mapping's "type" selects among the four node kinds.
func decodeNode(raw any) (ast.Node, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a node mapping, got %T", raw)
	}
	typ, _ := node["type"].(string)
	switch typ {
	case "constant":
		return decodeConstant(node["value"])
	case "symbol":
		name, ok := node["name"].(string)
		if !ok {
			return nil, fmt.Errorf("symbol node missing name")
		}
		if name == "" {
			return ast.Missing, nil
		}
		return ast.NewSymbol(name), nil
	case "call":
		return decodeCall(node)
	case "params":
		return decodeParams(node)
	default:
		return nil, runtime.UnknownNodeKindError{Kind: typ}
	}
}

func decodeConstant(value any) (ast.Node, error) {
	switch v := value.(type) {
	case nil:
		return ast.NewConstant(nil), nil
	case bool:
		return ast.NewConstant(v), nil
	case int:
		return ast.NewConstant(int64(v)), nil
	case int64:
		return ast.NewConstant(v), nil
	case float64:
		return ast.NewConstant(v), nil
	case string:
		return ast.NewConstant(v), nil
	default:
		return nil, fmt.Errorf("unsupported constant payload %T", value)
	}
}

func decodeCall(node map[string]any) (ast.Node, error) {
	headRaw, ok := node["head"]
	if !ok {
		return nil, fmt.Errorf("call node missing head")
	}
	head, err := decodeNode(headRaw)
	if err != nil {
		return nil, fmt.Errorf("call head: %w", err)
	}
	argsRaw, _ := node["args"].([]any)
	args := make([]ast.Arg, 0, len(argsRaw))
	for idx, entry := range argsRaw {
		argNode, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("call argument %d: expected a mapping, got %T", idx, entry)
		}
		name, _ := argNode["name"].(string)
		valueRaw, ok := argNode["value"]
		if !ok {
			return nil, fmt.Errorf("call argument %d: missing value", idx)
		}
		value, err := decodeNode(valueRaw)
		if err != nil {
			return nil, fmt.Errorf("call argument %d: %w", idx, err)
		}
		args = append(args, ast.Arg{Name: name, Value: value})
	}
	return ast.NewCall(head, args...), nil
}

func decodeParams(node map[string]any) (ast.Node, error) {
	paramsRaw, _ := node["params"].([]any)
	params := make([]ast.Param, 0, len(paramsRaw))
	for idx, entry := range paramsRaw {
		paramNode, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %d: expected a mapping, got %T", idx, entry)
		}
		name, _ := paramNode["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("parameter %d: missing name", idx)
		}
		def := ast.Node(ast.Missing)
		if defRaw, hasDefault := paramNode["default"]; hasDefault {
			decoded, err := decodeNode(defRaw)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: default: %w", idx, err)
			}
			def = decoded
		}
		params = append(params, ast.Param{Name: name, Default: def})
	}
	return ast.NewParameterList(params...), nil
}

// Check verifies a program against the config's forbidden-symbol list
// without evaluating anything.
func Check(cfg *Config, program *Program) error {
	var errs ValidationError
	for idx, expr := range program.Expressions {
		for _, name := range cfg.Forbidden {
			found, err := interpreter.ContainsSymbol(expr, name)
			if err != nil {
				return err
			}
			if found {
				errs.Issues = append(errs.Issues, fmt.Sprintf("expression %d uses forbidden symbol '%s'", idx, name))
			}
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Run evaluates a program under a fresh interpreter configured from cfg
// and returns the last value.
func Run(cfg *Config, program *Program) (runtime.Value, error) {
	if err := Check(cfg, program); err != nil {
		return nil, err
	}
	interp := interpreter.New(cfg.Options()...)
	tracer().Debugf("running program %q", program.Name)
	return interp.EvaluateProgram(program.Expressions)
}
