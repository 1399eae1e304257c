package i18n

import (
	"fmt"
	"sort"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "min"). Placeholders use the {name} form.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":   "The {field} field has an invalid type",
		"required":       "The {field} field must be defined",
		"too_short":      "The {field} field length must be at least {min}",
		"too_long":       "The {field} field length must not exceed {max}",
		"fixed_length":   "The {field} field length must be {size}",
		"not_empty":      "The {field} field must not be empty",
		"distinct":       "The {field} field has duplicate values",
		"pattern":        "The {field} field format is invalid",
		"invalid_format": "The {field} field must be a valid {format}",
		"literal":        "The {field} field must be {expected}",
		"invalid_enum":   "The selected {field} is invalid",
		"too_small":      "The {field} field must be at least {min}",
		"too_big":        "The {field} field must not be greater than {max}",
		"decimal":        "The {field} field must be an integer",
		"parse_error":    "The {field} field could not be parsed",
		"max_depth":      "The {field} field is nested too deeply",
		"union_no_match": "Invalid value provided for {field} field",
		"group_no_match": "Invalid value provided for {field} field",
		"guard_panic":    "The {field} field could not be matched",
		"custom":         "The {field} field is invalid",
	},
	"ja": {
		"invalid_type":   "{field} の型が不正です",
		"required":       "{field} は必須です",
		"too_short":      "{field} の長さは {min} 以上である必要があります",
		"too_long":       "{field} の長さは {max} 以下である必要があります",
		"fixed_length":   "{field} の長さは {size} である必要があります",
		"not_empty":      "{field} を空にすることはできません",
		"distinct":       "{field} に重複した値があります",
		"pattern":        "{field} の形式が不正です",
		"invalid_format": "{field} は有効な {format} である必要があります",
		"literal":        "{field} は {expected} である必要があります",
		"union_no_match": "{field} に不正な値が指定されました",
		"group_no_match": "{field} に不正な値が指定されました",
		"parse_error":    "{field} を解析できません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tpl, ok := dictionaries[t.lang][code]
	if !ok {
		tpl, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return interpolate(tpl, data)
}

func interpolate(tpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tpl, "{") {
		return tpl
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }

// Format renders the message for code, exposing field and every param as
// placeholder data.
func Format(code, field string, params map[string]any) string {
	data := make(map[string]string, len(params)+1)
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	if field == "" {
		field = "value"
	}
	data["field"] = field
	return T(code, data)
}
