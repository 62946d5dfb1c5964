// Package compile wires the passes into one pipeline.
package compile

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"mcc/pkg/ast"
	"mcc/pkg/codegen"
	"mcc/pkg/config"
	"mcc/pkg/lexer"
	"mcc/pkg/parser"
	"mcc/pkg/tac"
	"mcc/pkg/typeChecker"
	"mcc/pkg/util"
)

// CompileFile reads name and lowers it to three-address code.
func CompileFile(ctx context.Context, cfg *config.Config, name string) (*tac.Program, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, cfg, name, string(text))
}

// Compile runs lex, parse, check and generate over one source text.
func Compile(ctx context.Context, cfg *config.Config, name, text string) (_ *tac.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name)
	defer tr.Finish("err", &err)

	root, err := Check(ctx, cfg, name, text)
	if err != nil {
		return nil, err
	}

	prog, err := codegen.NewGenerator(cfg).Generate(root)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	tr.Printw("generated", "globals", len(prog.Globals), "funcs", len(prog.Funcs), "entry", prog.Entry != nil)

	return prog, nil
}

// Check runs the frontend and the type checker, returning the annotated
// declaration list. Frontend and checker errors are positioned
// diagnostics and are passed through unwrapped so the driver can render
// them with their source line.
func Check(ctx context.Context, cfg *config.Config, name, text string) (*ast.Node, error) {
	root, err := Parse(ctx, cfg, name, text)
	if err != nil {
		return nil, err
	}

	if err := typeChecker.NewTypeChecker(cfg).Check(root); err != nil {
		return nil, err
	}

	tlog.SpanFromContext(ctx).Printw("checked", "name", name)

	return root, nil
}

// Parse lexes and parses one source text. Source content is registered
// with util so later diagnostics can quote the offending line.
func Parse(ctx context.Context, cfg *config.Config, name, text string) (*ast.Node, error) {
	source := []rune(text)
	util.SetSourceFiles([]util.SourceFileRecord{{Name: name, Content: source}})

	toks, err := lexer.NewLexer(source, 0, cfg).Tokenize()
	if err != nil {
		return nil, err
	}

	root, err := parser.NewParser(toks).Parse()
	if err != nil {
		return nil, err
	}

	tlog.SpanFromContext(ctx).Printw("parsed", "tokens", len(toks), "decls", len(root.Data.(ast.BlockNode).Decls), "name", name)

	return root, nil
}
