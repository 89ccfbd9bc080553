package handler

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/goydb/goyview/pkg/port"
)

func intOption(name string, fallback int64, options url.Values) int64 {
	if len(options[name]) == 0 {
		return fallback
	}
	v, err := strconv.ParseInt(options[name][0], 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func boolOption(name string, fallback bool, options url.Values) bool {
	if len(options[name]) == 0 {
		return fallback
	}
	if options[name][0] == "" {
		return fallback
	}
	return options[name][0] == "true"
}

func stringOption(name string, alias string, options url.Values) string {
	if len(options[name]) > 0 {
		return options[name][0]
	}
	if len(options[alias]) > 0 {
		return options[alias][0]
	}
	return ""
}

func hasOption(name, alias string, options url.Values) bool {
	return options.Has(name) || (alias != "" && options.Has(alias))
}

// strictIntOption rejects values that are not integers
func strictIntOption(name string, fallback int, options url.Values) (int, error) {
	if !options.Has(name) {
		return fallback, nil
	}
	v, err := strconv.Atoi(options.Get(name))
	if err != nil {
		return 0, &port.InvalidQuerySpecError{Param: name, Reason: "expected an integer"}
	}
	return v, nil
}

// strictBoolOption rejects values other than true and false
func strictBoolOption(name string, fallback bool, options url.Values) (bool, error) {
	if !options.Has(name) {
		return fallback, nil
	}
	switch options.Get(name) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &port.InvalidQuerySpecError{Param: name, Reason: "expected true or false"}
}

// jsonOption decodes the JSON encoded value of the option
func jsonOption(name, alias string, options url.Values) (interface{}, error) {
	var v interface{}
	err := json.Unmarshal([]byte(stringOption(name, alias, options)), &v)
	if err != nil {
		return nil, &port.InvalidQuerySpecError{Param: name, Reason: "invalid JSON: " + err.Error()}
	}
	return v, nil
}
