package surface

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// fakeEvaluator records the evaluated expression and plays back a canned
// page-side result.
type fakeEvaluator struct {
	js     string
	result string
	err    error
}

func (f *fakeEvaluator) Eval(_ context.Context, js string, out any) error {
	f.js = js
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.result), out)
}

func TestExecuteScript_ReturnsData(t *testing.T) {
	ev := &fakeEvaluator{result: `{"data":{"title":"Hello"}}`}

	res := ExecuteScript(context.Background(), ev, `function extractData(document) { return { title: "Hello" }; }`)
	if res.Failed() {
		t.Fatalf("expected success, got error %q (%s)", res.Error, res.Details)
	}
	if string(res.Data) != `{"title":"Hello"}` {
		t.Errorf("expected extracted data, got %s", res.Data)
	}
}

func TestExecuteScript_EmbedsSourceAsStringLiteral(t *testing.T) {
	ev := &fakeEvaluator{result: `{"data":null}`}
	source := "function extractData(document) {\n  return document.title; // \"quoted\"\n}"

	ExecuteScript(context.Background(), ev, source)

	quoted, _ := json.Marshal(source)
	if !strings.Contains(ev.js, string(quoted)) {
		t.Errorf("expected source embedded as a JSON string literal, got:\n%s", ev.js)
	}
	if !strings.Contains(ev.js, "new Function") {
		t.Error("expected page-side compilation via the Function constructor")
	}
}

func TestExecuteScript_PageErrorCapturedInBand(t *testing.T) {
	ev := &fakeEvaluator{result: `{"error":"boom","details":"TypeError: boom\n  at extractData"}`}

	res := ExecuteScript(context.Background(), ev, `function extractData(document) { throw new TypeError("boom"); }`)
	if !res.Failed() {
		t.Fatal("expected failure result")
	}
	if res.Error != "boom" {
		t.Errorf("expected error %q, got %q", "boom", res.Error)
	}
	if !strings.Contains(res.Details, "TypeError") {
		t.Errorf("expected details to carry the stack, got %q", res.Details)
	}
}

func TestExecuteScript_EvaluatorFailureCapturedInBand(t *testing.T) {
	ev := &fakeEvaluator{err: errors.New("target crashed")}

	res := ExecuteScript(context.Background(), ev, `not even javascript`)
	if !res.Failed() {
		t.Fatal("expected failure result")
	}
	if res.Error != "script error" {
		t.Errorf("expected generic script error, got %q", res.Error)
	}
	if !strings.Contains(res.Details, "target crashed") {
		t.Errorf("expected evaluator error in details, got %q", res.Details)
	}
}
