package model

import (
	"strconv"

	"cloud.google.com/go/civil"
)

// Kind is the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindDate
	KindDateTime
	KindTime
	KindBool
	KindString
)

// Value is a tagged union over the warehouse cell types. The zero Value is null.
type Value struct {
	kind     Kind
	i        int64
	f        float64
	b        bool
	s        string
	date     civil.Date
	dateTime civil.DateTime
	time     civil.Time
}

func Null() Value { return Value{} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func DateValue(d civil.Date) Value { return Value{kind: KindDate, date: d} }
func DateTimeValue(dt civil.DateTime) Value { return Value{kind: KindDateTime, dateTime: dt} }
func TimeValue(t civil.Time) Value { return Value{kind: KindTime, time: t} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }
func (v Value) Date() (civil.Date, bool) { return v.date, v.kind == KindDate }
func (v Value) DateTime() (civil.DateTime, bool) { return v.dateTime, v.kind == KindDateTime }
func (v Value) Time() (civil.Time, bool) { return v.time, v.kind == KindTime }

// Interface returns the held value as a Go value suitable for JSON encoding,
// with civil dates and times rendered in their BigQuery canonical text form.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindDate:
		return v.date.String()
	case KindDateTime:
		return v.dateTime.String()
	case KindTime:
		return v.time.String()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	default:
		return v.Interface().(string)
	}
}
