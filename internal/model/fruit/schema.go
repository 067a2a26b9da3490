package fruit

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation 描述创建请求中一个不合法的字段
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 汇总请求体中的全部校验错误
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

// draftSchema lists the required fields of a create payload in reporting order.
var draftSchema = []struct {
	name string
	kind fieldKind
}{
	{name: "name", kind: kindString},
	{name: "price", kind: kindNumber},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeDraft 先校验创建请求的JSON结构与类型，再校验字段规则。
// 返回合法的 Draft 或 *ValidationError，不做任何类型转换。
func DecodeDraft(data []byte) (Draft, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return Draft{}, &ValidationError{Violations: []Violation{{Field: "body", Message: "must be a JSON object"}}}
	}

	var (
		draft      Draft
		violations []Violation
	)
	for _, field := range draftSchema {
		value, ok := raw[field.name]
		if !ok {
			violations = append(violations, Violation{Field: field.name, Message: "is required"})
			continue
		}

		var msg string
		switch field.kind {
		case kindString:
			msg = decodeString(value, &draft.Name)
		case kindNumber:
			msg = decodeNumber(value, &draft.Price)
		}
		if msg != "" {
			violations = append(violations, Violation{Field: field.name, Message: msg})
		}
	}
	if len(violations) > 0 {
		return Draft{}, &ValidationError{Violations: violations}
	}

	if err := draft.Validate(); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Validate 按 Draft 的 struct tag 校验字段规则
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, Violation{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

func decodeString(value json.RawMessage, dst *string) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || value[0] != '"' {
		return "must be a string"
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return "must be a string"
	}
	return ""
}

func decodeNumber(value json.RawMessage, dst *float64) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || (value[0] != '-' && (value[0] < '0' || value[0] > '9')) {
		return "must be a number"
	}
	if err := json.Unmarshal(value, dst); err != nil {
		// valid JSON number outside float64 range
		return "must be a finite number"
	}
	return ""
}
