package functions_test

import (
	"slices"
	"sync"
	"testing"

	"github.com/sandrolain/gorule/pkg/functions"
	"github.com/sandrolain/gorule/pkg/types"
)

func TestNames(t *testing.T) {
	want := []string{"as_epoch", "as_lower", "as_seconds", "as_upper", "language_code", "length", "trim"}
	if got := functions.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestLookup(t *testing.T) {
	b, ok := functions.Lookup("as_lower")
	if !ok {
		t.Fatal("as_lower not registered")
	}
	if b.Name != "as_lower" {
		t.Errorf("Name = %q", b.Name)
	}
	if got := b.Signature.String(); got != "function(string) string" {
		t.Errorf("Signature = %s", got)
	}
	if !b.ArgType().Equal(types.TypeString) || !b.ReturnType().Equal(types.TypeString) {
		t.Errorf("arg %s return %s", b.ArgType(), b.ReturnType())
	}

	if _, ok := functions.Lookup("as_lowr"); ok {
		t.Error("unexpected builtin as_lowr")
	}
	if !functions.IsBuiltin("length") || functions.IsBuiltin("age") {
		t.Error("IsBuiltin disagrees with the registry")
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := functions.Get("as_lowr")
	if !types.HasCode(err, types.ErrSymbolResolution) {
		t.Fatalf("expected SymbolResolutionError, got %v", err)
	}
	terr := err.(*types.Error)
	if terr.Message != "builtin method as_lowr not found" {
		t.Errorf("message = %q", terr.Message)
	}
	if terr.Details.Suggestion != "as_lower" {
		t.Errorf("suggestion = %q", terr.Details.Suggestion)
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		in   types.Value
		want types.Value
		code types.ErrorCode
	}{
		{name: "as_lower", in: types.String("HANK"), want: types.String("hank")},
		{name: "as_lower", in: types.String("ÀÉÎ"), want: types.String("àéî")},
		{name: "as_lower", in: types.Integer(1), code: types.ErrFunctionCall},
		{name: "as_upper", in: types.String("straße"), want: types.String("STRASSE")},
		{name: "as_upper", in: types.Boolean(true), code: types.ErrFunctionCall},
		{name: "trim", in: types.String("  x \t"), want: types.String("x")},
		{name: "length", in: types.String("héllo"), want: types.Integer(5)},
		{name: "length", in: types.String(""), want: types.Integer(0)},
		{name: "length", in: types.Float(1), code: types.ErrFunctionCall},
		{name: "language_code", in: types.String("en"), want: types.String("en")},
		{name: "language_code", in: types.String("en-US"), want: types.String("en")},
		{name: "language_code", in: types.String("pt-BR"), want: types.String("pt")},
		{name: "language_code", in: types.String("und"), want: types.String("und")},
		{name: "language_code", in: types.String("iw-IL"), want: types.String("iw")},
		{name: "language_code", in: types.String("tl"), want: types.String("tl")},
		{name: "language_code", in: types.String("mo"), want: types.String("mo")},
		{name: "language_code", in: types.String("EN-gb"), want: types.String("en")},
		{name: "language_code", in: types.String("not a language"), code: types.ErrSymbolResolution},
		{name: "language_code", in: types.String(""), code: types.ErrSymbolResolution},
		{name: "language_code", in: types.Integer(3), code: types.ErrSymbolResolution},
		{name: "as_seconds", in: types.String("PT1M30S"), want: types.Float(90)},
		{name: "as_seconds", in: types.String("15 minutes"), code: types.ErrFunctionCall},
		{name: "as_epoch", in: types.String("1970-01-02T00:00:00Z"), want: types.Integer(86400)},
		{name: "as_epoch", in: types.String("1970-01-01"), want: types.Integer(0)},
		{name: "as_epoch", in: types.String("soon"), code: types.ErrFunctionCall},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.in.String(), func(t *testing.T) {
			b, err := functions.Get(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			got, err := b.Call(tt.in)
			if tt.code != "" {
				if !types.HasCode(err, tt.code) {
					t.Fatalf("%s(%s) error = %v, want %s", tt.name, tt.in, err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s(%s): %v", tt.name, tt.in, err)
			}
			if got != tt.want {
				t.Errorf("%s(%s) = %#v, want %#v", tt.name, tt.in, got, tt.want)
			}
		})
	}
}

func TestLanguageCodeMessage(t *testing.T) {
	b, _ := functions.Lookup("language_code")
	_, err := b.Call(types.String("zzzzzzzzz"))
	if err == nil {
		t.Fatal("expected an error")
	}
	terr := err.(*types.Error)
	if terr.Message != "unable to find valid language code for 'zzzzzzzzz'" {
		t.Errorf("message = %q", terr.Message)
	}
}

func TestFunctionCallErrorDetails(t *testing.T) {
	b, _ := functions.Lookup("as_lower")
	_, err := b.Call(types.Float(1.5))
	terr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("expected *types.Error, got %T", err)
	}
	if terr.Message != "as_lower: expected string, got float" {
		t.Errorf("message = %q", terr.Message)
	}
	if terr.Details.Expected != "string" || terr.Details.Actual != "float" {
		t.Errorf("details = %+v", terr.Details)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Go(func() {
			for _, name := range functions.Names() {
				if _, ok := functions.Lookup(name); !ok {
					t.Errorf("%s vanished", name)
				}
			}
		})
	}
	wg.Wait()
}
