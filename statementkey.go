/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sqlcraft

import (
	"fmt"
	"reflect"
)

// statementKey resolves the argument passed to Engine.Object into the
// dotted "namespace.id" statement key a Mapper was loaded under.
//
// A string is used as-is. A func value — typically a method expression
// like (*UserMapper).FindByID, referencing an unimplemented interface
// method whose sole purpose is naming a statement — resolves through
// its runtime program counter so the mapper's namespace/id can match
// the method's package path and name, letting callers address
// statements through a typed interface instead of string literals.
func statementKey(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return "", &ParseError{Err: fmt.Errorf("sqlcraft: %T is not a valid statement key (want string or func)", v)}
	}
	return cachedRuntimeFuncName(rv.Pointer()), nil
}
