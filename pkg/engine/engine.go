// Package engine provides the Lisp scripting engine for skein. It wraps
// zygomys in a sandboxed environment and builds a diagram from user
// source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/skeinview/skein/pkg/editor"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Default viewport used for scripted sessions; scripts can zoom and pan
// from here.
const (
	scriptViewportW = 800
	scriptViewportH = 600
)

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment for
// determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

// Evaluate runs diagram-script source against a fresh editor and produces
// the resulting state.
//
// Return semantics:
//   - On success: editor + nil errors + nil error
//   - On parse/eval failure: nil editor + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*editor.Editor, []EvalError, error) {
	return e.EvaluateWith(nil, source)
}

// EvaluateWith runs source against an existing editor, so a script can
// extend a loaded scene. A nil base starts from an empty diagram. On
// failure the base may hold partial mutations and should be discarded.
func (e *Engine) EvaluateWith(base *editor.Editor, source string) (*editor.Editor, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ed, evalErrs, err := e.evaluate(base, source)
		ch <- evalResult{editor: ed, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(base *editor.Editor, source string) (*editor.Editor, []EvalError, error) {
	ed := base
	if ed == nil {
		ed = editor.New(scriptViewportW, scriptViewportH)
	}

	// Empty source is a valid program that produces an empty diagram.
	if strings.TrimSpace(source) == "" {
		return ed, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, ed)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return ed, nil, nil
}

// linePattern matches zygomys error messages like "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting line numbers from the message where possible.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
