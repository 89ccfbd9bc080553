package tengoview

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// modules that can be imported by map and reduce functions
var modules = []string{
	"text",   // regular expressions, string conversion, and manipulation
	"math",   // mathematical constants and functions
	"times",  // time-related functions
	"fmt",    // formatting functions
	"json",   // JSON functions
	"enum",   // Enumeration functions
	"hex",    // hex encoding and decoding functions
	"base64", // base64 encoding and decoding functions
}

const header = `text := import("text")
math := import("math")
times := import("times")
fmt := import("fmt")
json := import("json")
enum := import("enum")
hex := import("hex")
base64 := import("base64")
`

// compile compiles the script, vars are declared before compilation
// so that they can be set on clones of the compiled script.
func compile(src string, vars map[string]interface{}) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(header + src))
	script.SetImports(stdlib.GetModuleMap(modules...))
	for name, value := range vars {
		err := script.Add(name, value)
		if err != nil {
			return nil, err
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script error %v: %w", src, err)
	}
	return compiled, nil
}
