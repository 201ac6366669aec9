package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestScanObjectSimple(t *testing.T) {
	doc := `var x = {"a":1};rest`
	obj, next, err := ScanObject(doc, len("var x = "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != `{"a":1}` {
		t.Errorf("wrong object: %q", obj)
	}
	if doc[next:] != ";rest" {
		t.Errorf("wrong continuation: %q", doc[next:])
	}
}

func TestScanObjectNested(t *testing.T) {
	doc := `{"a":{"b":{"c":[1,2,3]}},"d":false}`
	obj, _, err := ScanObject(doc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != doc {
		t.Errorf("nested object truncated: %q", obj)
	}
}

func TestScanObjectBracesInStrings(t *testing.T) {
	doc := `{"title":"a {test} title","desc":"}}{{"}tail`
	obj, next, err := ScanObject(doc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(obj, `"}}{{"}`) {
		t.Errorf("string braces broke the scan: %q", obj)
	}
	if doc[next:] != "tail" {
		t.Errorf("wrong continuation: %q", doc[next:])
	}
}

func TestScanObjectEscapedQuote(t *testing.T) {
	doc := `{"a":"he said \"hi {\" there","b":2}`
	obj, _, err := ScanObject(doc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != doc {
		t.Errorf("escaped quote broke the scan: %q", obj)
	}
}

func TestScanObjectLeadingWhitespace(t *testing.T) {
	doc := "  \n\t" + `{"a":1}`
	obj, _, err := ScanObject(doc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != `{"a":1}` {
		t.Errorf("wrong object: %q", obj)
	}
}

func TestScanObjectMarkupAbort(t *testing.T) {
	_, _, err := ScanObject(`<div>{"a":1}</div>`, 0)
	if !errors.Is(err, ErrNotAnObject) {
		t.Fatalf("expected ErrNotAnObject, got %v", err)
	}
}

func TestScanObjectUnterminated(t *testing.T) {
	_, _, err := ScanObject(`{"a":{"b":1}`, 0)
	if !errors.Is(err, ErrUnterminated) {
		t.Fatalf("expected ErrUnterminated, got %v", err)
	}
}

func TestScanObjectNoObject(t *testing.T) {
	_, _, err := ScanObject(`just some text, no json here`, 0)
	if !errors.Is(err, ErrNotAnObject) {
		t.Fatalf("expected ErrNotAnObject, got %v", err)
	}
}
