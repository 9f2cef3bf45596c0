package queue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/mohae/deepcopy"
)

const pathSeparator = "."

// ValidateParams checks every dotted key of params.
func ValidateParams(params map[string]any) error {
	for key := range params {
		if strings.HasPrefix(key, pathSeparator) || strings.HasSuffix(key, pathSeparator) {
			return fmt.Errorf("%w: %q", domain.ErrMalformedParamPath, key)
		}
	}
	return nil
}

// MergeParams writes params into dst along their dotted paths. The last segment
// overwrites; intermediate segments descend into nested objects, created (or
// replacing a non-object value) when needed, leaving their siblings untouched.
// dst is only modified when every key is valid. Values are copied, so dst never
// shares nested objects with params.
func MergeParams(dst, params map[string]any) error {
	if err := ValidateParams(params); err != nil {
		return err
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set(dst, strings.Split(k, pathSeparator), params[k])
	}
	return nil
}

func set(obj map[string]any, path []string, value any) {
	if len(path) == 1 {
		obj[path[0]] = deepcopy.Copy(value)
		return
	}
	next, ok := obj[path[0]].(map[string]any)
	if !ok {
		next = make(map[string]any)
		obj[path[0]] = next
	}
	set(next, path[1:], value)
}
