package log

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"time"

	"github.com/holiman/uint256"

	elog "github.com/ethereum/go-ethereum/log"
)

const timeFormatMs = "2006-01-02T15:04:05.000-0700"

// JSONMsHandlerWithLevel writes JSON records with millisecond timestamps.
func JSONMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceAttrMs(false),
		Level:       level,
	})
}

// LogfmtMsHandlerWithLevel writes logfmt records with millisecond timestamps.
func LogfmtMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceAttrMs(true),
		Level:       level,
	})
}

// replaceAttrMs renames the builtin time and level keys to the geth ones ("t", "lvl"),
// and flattens values the slog encoders would otherwise expand (numbers, errors, Stringers).
// Time values are only formatted to text for logfmt; JSON keeps its native encoding.
func replaceAttrMs(logfmt bool) func(groups []string, attr slog.Attr) slog.Attr {
	return func(_ []string, attr slog.Attr) slog.Attr {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() != slog.KindTime {
				break
			}
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormatMs))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		case slog.LevelKey:
			if l, ok := attr.Value.Any().(slog.Level); ok {
				return slog.String("lvl", elog.LevelString(l))
			}
		}
		attr.Value = flatten(attr.Value, logfmt)
		return attr
	}
}

func flatten(v slog.Value, logfmt bool) slog.Value {
	switch x := v.Any().(type) {
	case time.Time:
		if logfmt {
			return slog.StringValue(x.Format(timeFormatMs))
		}
	case time.Duration:
		return slog.StringValue(x.String())
	case *big.Int:
		if x == nil {
			return slog.StringValue("<nil>")
		}
		return slog.StringValue(x.String())
	case *uint256.Int:
		if x == nil {
			return slog.StringValue("<nil>")
		}
		return slog.StringValue(x.Dec())
	case error:
		if isNil(x) {
			return slog.StringValue("<nil>")
		}
		return slog.StringValue(x.Error())
	case fmt.Stringer:
		if isNil(x) {
			return slog.StringValue("<nil>")
		}
		return slog.StringValue(x.String())
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
