// Package dbg turns opaque identifiers into readable names for debug output.
package dbg

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
)

// Names are generated lazily in order of demand and never forgotten, so only
// use this from debugging code.

var (
	mu   sync.Mutex
	memo = make(map[interface{}]string)
)

func init() {
	// Names depend on the order of requests, so make them change between runs
	// too, rather than let anyone rely on them.
	petname.NonDeterministicMode()
}

// A stable, readable name for any comparable key, such as a handle.
func Name(key interface{}) string {
	if isNil(key) {
		return "Ø"
	}
	mu.Lock()
	defer mu.Unlock()
	if name, ok := memo[key]; ok {
		return name
	}
	name := fmt.Sprintf("%s%s", title(petname.Adjective()), title(petname.Name()))
	memo[key] = name
	return name
}

func isNil(key interface{}) bool {
	if key == nil {
		return true
	}
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func title(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
