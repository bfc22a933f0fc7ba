package pgregistry

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// dummyValues mirrors the reference implementation's _DUMMY_VALUES table
// (_validate.py): a fixed, inert placeholder per supported parameter type,
// used to synthesize arguments for a registered query so it can be built
// and described without a caller actually supplying real values.
var dummyValues = map[reflect.Type]any{
	reflect.TypeOf(""):                "",
	reflect.TypeOf(int(0)):            int(0),
	reflect.TypeOf(int32(0)):          int32(0),
	reflect.TypeOf(int64(0)):          int64(0),
	reflect.TypeOf(float32(0)):        float32(0),
	reflect.TypeOf(float64(0)):        float64(0),
	reflect.TypeOf(false):             false,
	reflect.TypeOf([]byte{}):          []byte{},
	reflect.TypeOf(time.Time{}):       time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	reflect.TypeOf(time.Duration(0)):  time.Duration(0),
	reflect.TypeOf(uuid.UUID{}):       uuid.Nil,
}

// DummyValue returns a placeholder value for t, for use when synthesizing
// arguments to a registered query during validation. Go has no
// inspect.signature-style reflection over an arbitrary function's
// parameter names, so callers supply the parameter list explicitly at
// registration time (see Param) instead of deriving it from the function.
func DummyValue(t reflect.Type) (any, error) {
	if v, ok := dummyValues[t]; ok {
		return v, nil
	}
	switch t.Kind() {
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), nil
	case reflect.Ptr:
		return reflect.Zero(t).Interface(), nil
	}
	return nil, fmt.Errorf("pgregistry: no dummy value for type %s", t)
}
