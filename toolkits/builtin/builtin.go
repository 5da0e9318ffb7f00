// Package builtin assembles the stock tools into a ready registry.
package builtin

import (
	"github.com/skosovsky/toolcall"
	"github.com/skosovsky/toolcall/toolkits/mathtool"
	"github.com/skosovsky/toolcall/toolkits/timetool"
)

// Category names used by NewRegistry.
const (
	CategoryMath    = "math"
	CategoryUtility = "utility"
)

// Tools returns fresh instances of calculator, get_timestamp and random_number, tagged with
// their categories.
func Tools() []toolcall.Tool {
	return []toolcall.Tool{
		mathtool.NewCalculator(toolcall.WithTags(CategoryMath)),
		timetool.New(timetool.WithToolOptions(toolcall.WithTags(CategoryUtility))),
		mathtool.NewRandomNumber(toolcall.WithTags(CategoryUtility, CategoryMath)),
	}
}

// NewRegistry returns a registry holding the built-in tools, with categories
// math = {calculator, random_number} and utility = {get_timestamp, random_number}.
func NewRegistry(opts ...toolcall.RegistryOption) (*toolcall.Registry, error) {
	reg := toolcall.NewRegistry(opts...)
	for _, t := range Tools() {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
