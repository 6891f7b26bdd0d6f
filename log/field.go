package log

import (
	"fmt"
	"strconv"
	"time"
)

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value string
}

// Any formats value with %v.
func Any(key string, value any) Field {
	return Field{Key: key, Value: fmt.Sprintf("%v", value)}
}

// Error records err.Error(), or "<nil>" for a nil error.
func Error(key string, err error) Field {
	if err == nil {
		return Field{Key: key, Value: "<nil>"}
	}
	return Field{Key: key, Value: err.Error()}
}

// Int accepts any of the builtin integer types.
func Int(key string, value any) Field {
	switch t := value.(type) {
	case int:
		return Field{Key: key, Value: strconv.Itoa(t)}
	case uint:
		return Field{Key: key, Value: strconv.FormatUint(uint64(t), 10)}
	case int8:
		return Field{Key: key, Value: strconv.Itoa(int(t))}
	case uint8:
		return Field{Key: key, Value: strconv.FormatUint(uint64(t), 10)}
	case int16:
		return Field{Key: key, Value: strconv.Itoa(int(t))}
	case uint16:
		return Field{Key: key, Value: strconv.FormatUint(uint64(t), 10)}
	case int32:
		return Field{Key: key, Value: strconv.Itoa(int(t))}
	case uint32:
		return Field{Key: key, Value: strconv.FormatUint(uint64(t), 10)}
	case int64:
		return Field{Key: key, Value: strconv.FormatInt(t, 10)}
	case uint64:
		return Field{Key: key, Value: strconv.FormatUint(t, 10)}
	default:
		return Field{Key: key, Value: "<unknown value type for int field>"}
	}
}

// Uint64 is the allocation-free form of Int for sequence numbers and counts.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: strconv.FormatUint(value, 10)}
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: strconv.FormatBool(value)}
}

// Duration renders d with time.Duration.String.
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
}

// Float accepts float32 or float64.
func Float(key string, value any) Field {
	switch t := value.(type) {
	case float32:
		return Field{Key: key, Value: strconv.FormatFloat(float64(t), 'f', -1, 32)}
	case float64:
		return Field{Key: key, Value: strconv.FormatFloat(t, 'f', -1, 64)}
	default:
		return Field{Key: key, Value: "<unknown value type for float field>"}
	}
}
