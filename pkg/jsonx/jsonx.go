// Package jsonx is the single JSON import site for the module. It wraps
// goccy/go-json and adapts it to echo's JSONSerializer.
package jsonx

import (
	stdjson "encoding/json"
	"fmt"
	"net/http"

	gjson "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage

func Marshal(v any) ([]byte, error) { return gjson.Marshal(v) }

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return gjson.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error { return gjson.Unmarshal(data, v) }

func Valid(data []byte) bool { return gjson.Valid(data) }

// Serializer implements echo.JSONSerializer on top of goccy/go-json.
type Serializer struct{}

func (Serializer) Serialize(c echo.Context, i any, indent string) error {
	enc := gjson.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (Serializer) Deserialize(c echo.Context, i any) error {
	err := gjson.NewDecoder(c.Request().Body).Decode(i)
	if ute, ok := err.(*gjson.UnmarshalTypeError); ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Unmarshal type error: expected=%v, got=%v, field=%v, offset=%v", ute.Type, ute.Value, ute.Field, ute.Offset)).SetInternal(err)
	} else if se, ok := err.(*gjson.SyntaxError); ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Syntax error: offset=%v, error=%v", se.Offset, se.Error())).SetInternal(err)
	}
	return err
}
