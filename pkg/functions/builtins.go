package functions

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sandrolain/gorule/pkg/literal"
	"github.com/sandrolain/gorule/pkg/types"
)

var stringToString = types.FunctionOf(types.TypeString, []types.DataType{types.TypeString}, 1)
var stringToFloat = types.FunctionOf(types.TypeFloat, []types.DataType{types.TypeString}, 1)

// builtinTable lists every builtin. Keep it sorted by name.
var builtinTable = []*Builtin{
	{Name: "as_epoch", Signature: stringToFloat, Impl: fnAsEpoch},
	{Name: "as_lower", Signature: stringToString, Impl: fnAsLower},
	{Name: "as_seconds", Signature: stringToFloat, Impl: fnAsSeconds},
	{Name: "as_upper", Signature: stringToString, Impl: fnAsUpper},
	{Name: "language_code", Signature: stringToString, Impl: fnLanguageCode},
	{Name: "length", Signature: stringToFloat, Impl: fnLength},
	{Name: "trim", Signature: stringToString, Impl: fnTrim},
}

// expectString returns v as a string or a FunctionCallError naming fn.
func expectString(fn string, v types.Value) (string, error) {
	s, ok := v.(types.String)
	if !ok {
		err := types.NewFunctionCallError(fn, fmt.Sprintf("expected string, got %s", kindOf(v)))
		err.Details.Expected = types.TypeString.String()
		err.Details.Actual = kindOf(v)
		return "", err
	}
	return string(s), nil
}

func kindOf(v types.Value) string {
	if v == nil {
		return "undefined"
	}
	return v.Kind().String()
}

// fnAsLower lowercases a string using Unicode case mapping.
// A Caser is stateful, so one is created per call.
func fnAsLower(v types.Value) (types.Value, error) {
	s, err := expectString("as_lower", v)
	if err != nil {
		return nil, err
	}
	return types.String(cases.Lower(language.Und).String(s)), nil
}

// fnAsUpper uppercases a string using Unicode case mapping.
func fnAsUpper(v types.Value) (types.Value, error) {
	s, err := expectString("as_upper", v)
	if err != nil {
		return nil, err
	}
	return types.String(cases.Upper(language.Und).String(s)), nil
}

// fnTrim removes leading and trailing white space.
func fnTrim(v types.Value) (types.Value, error) {
	s, err := expectString("trim", v)
	if err != nil {
		return nil, err
	}
	return types.String(strings.TrimSpace(s)), nil
}

// fnLength returns the number of characters in a string.
func fnLength(v types.Value) (types.Value, error) {
	s, err := expectString("length", v)
	if err != nil {
		return nil, err
	}
	return types.Integer(utf8.RuneCountInString(s)), nil
}

// fnLanguageCode returns the primary language subtag of a BCP 47 tag as
// written, e.g. "en" for "en-US" and "iw" for "iw-IL". Deprecated and
// undetermined subtags are not canonicalized. When the full tag does not
// parse, the part before the first '-' is tried on its own.
func fnLanguageCode(v types.Value) (types.Value, error) {
	s, ok := v.(types.String)
	if !ok {
		return nil, types.NewSymbolResolutionError("language_code", "", "").
			WithCause(fmt.Errorf("expected string, got %s", kindOf(v)))
	}

	tag, err := language.Raw.Parse(string(s))
	if err != nil {
		primary, _, _ := strings.Cut(string(s), "-")
		tag, err = language.Raw.Parse(primary)
	}
	if err != nil || s == "" {
		serr := types.NewSymbolResolutionError(string(s), "language codes", "")
		serr.Message = fmt.Sprintf("unable to find valid language code for '%s'", string(s))
		return nil, serr.WithCause(err)
	}
	base, _, _ := tag.Raw()
	return types.String(base.String()), nil
}

// fnAsSeconds converts an ISO-8601 duration such as PT1H30M to seconds.
func fnAsSeconds(v types.Value) (types.Value, error) {
	s, err := expectString("as_seconds", v)
	if err != nil {
		return nil, err
	}
	d, err := literal.ParseTimedelta(s)
	if err != nil {
		return nil, types.NewFunctionCallError("as_seconds", err.Error()).WithCause(err)
	}
	return types.Float(d.Seconds()), nil
}

// fnAsEpoch converts a datetime string to Unix seconds. Datetimes without an
// offset are taken as UTC.
func fnAsEpoch(v types.Value) (types.Value, error) {
	s, err := expectString("as_epoch", v)
	if err != nil {
		return nil, err
	}
	t, err := literal.ParseDatetime(s, nil)
	if err != nil {
		return nil, types.NewFunctionCallError("as_epoch", err.Error()).WithCause(err)
	}
	return types.Integer(t.Unix()), nil
}
