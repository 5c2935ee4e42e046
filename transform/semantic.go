package transform

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"time"

	"github.com/mcncl/jsonmodel/jsonvalue"
)

// Date layouts. Parsing accepts either a literal Z or a numeric offset;
// formatting always renders UTC as +0000.
const (
	DateParseLayout  = "2006-01-02T15:04:05.000Z0700"
	DateFormatLayout = "2006-01-02T15:04:05.000-0700"
)

func dateFromJSON(v jsonvalue.Value) (time.Time, bool) {
	s, ok := v.AsString()
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(DateParseLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func dateToJSON(t time.Time) any {
	return t.UTC().Format(DateFormatLayout)
}

// colorFromJSON reads #RRGGBB (the # is optional). Alpha is always opaque.
func colorFromJSON(v jsonvalue.Value) (color.NRGBA, bool) {
	s, ok := v.AsString()
	if !ok {
		return color.NRGBA{}, false
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	rgb, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}, true
}

// colorToJSON drops alpha.
func colorToJSON(c color.NRGBA) any {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// StringEnum maps raw JSON strings onto E. Matching is case-sensitive. With no
// values every string is accepted.
func StringEnum[E ~string](values ...E) Transformer[E] {
	return Func(
		func(v jsonvalue.Value) (E, bool) {
			s, ok := v.AsString()
			if !ok {
				return "", false
			}
			e := E(s)
			if len(values) > 0 && !slices.Contains(values, e) {
				return "", false
			}
			return e, true
		},
		func(e E) any { return string(e) },
	)
}

// Integer is the set of signed integer kinds an IntEnum can be built on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// IntEnum maps integral JSON numbers onto E. Fractions and numbers outside the
// range of E never match. With no values every integer is accepted.
func IntEnum[E Integer](values ...E) Transformer[E] {
	return Func(
		func(v jsonvalue.Value) (E, bool) {
			n, ok := v.AsNumber()
			if !ok {
				return 0, false
			}
			i, err := n.Int64()
			if err != nil {
				return 0, false
			}
			e := E(i)
			if int64(e) != i {
				return 0, false
			}
			if len(values) > 0 && !slices.Contains(values, e) {
				return 0, false
			}
			return e, true
		},
		func(e E) any { return int64(e) },
	)
}
