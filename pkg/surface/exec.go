package surface

import (
	"context"
	"encoding/json"
	"fmt"
)

// Evaluator is the slice of Surface that script execution needs.
type Evaluator interface {
	Eval(ctx context.Context, js string, out any) error
}

// ExecResult carries the outcome of running an extraction script. Exactly
// one of Data or Error is meaningful; Details elaborates on Error.
type ExecResult struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details string          `json:"details,omitempty"`
}

// Failed reports whether the run produced an error instead of data.
func (r ExecResult) Failed() bool {
	return r.Error != ""
}

// execTemplate compiles the script source inside the page and invokes the
// extractData function it must define. Compilation happens through the
// Function constructor so a malformed script surfaces as a caught error
// instead of poisoning the whole evaluation.
const execTemplate = `
(function() {
    try {
        var factory = new Function(%s + '\n;return (typeof extractData === "function") ? extractData : null;');
        var fn = factory();
        if (!fn) {
            return { error: 'extractData is not defined', details: 'the script must declare a function named extractData(document)' };
        }
        var value = fn(document);
        return { data: (value === undefined) ? null : value };
    } catch (err) {
        return { error: String((err && err.message) || err), details: String((err && err.stack) || err) };
    }
})()`

// ExecuteScript runs a generated extraction script against the displayed
// document. The script must define extractData(document); its return value
// becomes Data. Thrown errors and malformed sources are captured as an
// in-result error, never propagated, so a bad script cannot take down the
// session.
func ExecuteScript(ctx context.Context, ev Evaluator, source string) ExecResult {
	quoted, err := json.Marshal(source)
	if err != nil {
		return ExecResult{Error: "script error", Details: err.Error()}
	}

	var res ExecResult
	if err := ev.Eval(ctx, fmt.Sprintf(execTemplate, quoted), &res); err != nil {
		return ExecResult{Error: "script error", Details: err.Error()}
	}
	return res
}
