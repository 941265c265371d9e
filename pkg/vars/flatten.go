package vars

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/template"
)

// Flatten turns nested tables into an overlay of dotted paths.
//
//	{"colors": {"fg": "#fff"}, "font.size": 12}  =>  colors.fg=#fff, font.size=12
//
// Scalars are stringified. Arrays and nulls are rejected, as are keys that
// would not form a valid directive path and two keys flattening to the same
// path.
func Flatten(name string, data map[string]interface{}) (Overlay, error) {
	overlay := Overlay{Name: name, Values: make(map[string]string)}
	if err := flattenInto(overlay.Values, "", data); err != nil {
		return Overlay{}, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid variables in %s", name)
	}
	return overlay, nil
}

func flattenInto(out map[string]string, prefix string, data map[string]interface{}) error {
	// Sorted so errors are reported deterministically.
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch v := data[key].(type) {
		case map[string]interface{}:
			if err := flattenInto(out, path, v); err != nil {
				return err
			}
			continue
		case map[interface{}]interface{}:
			converted := make(map[string]interface{}, len(v))
			for k, val := range v {
				converted[fmt.Sprint(k)] = val
			}
			if err := flattenInto(out, path, converted); err != nil {
				return err
			}
			continue
		}

		if !template.ValidPath(path) {
			return fmt.Errorf("variable name %q is not a valid path", path)
		}
		value, err := scalar(path, data[key])
		if err != nil {
			return err
		}
		if _, dup := out[path]; dup {
			return fmt.Errorf("variable %q is defined twice", path)
		}
		out[path] = value
	}
	return nil
}

func scalar(path string, v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	case fmt.Stringer:
		return val.String(), nil
	case nil:
		return "", fmt.Errorf("variable %q has no value", path)
	case []interface{}:
		return "", fmt.Errorf("variable %q is a list; only scalar values are supported", path)
	default:
		return "", fmt.Errorf("variable %q has unsupported type %T", path, v)
	}
}
