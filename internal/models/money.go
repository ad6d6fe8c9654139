package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidMoney = errors.New("invalid money amount")

// Money — сумма в сотых долях (копейки/пайсы). Арифметика только целочисленная,
// чтобы пересчёт с нуля давал побитово одинаковый результат.
type Money int64

// Units переводит целые единицы в Money.
func Units(n int64) Money { return Money(n * 100) }

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// maxWhole — наибольшая целая часть, при которой w*100+99 помещается в int64.
const maxWhole = (math.MaxInt64 - 99) / 100

// ParseMoney разбирает "12", "12.5", "-7.25". Больше двух знаков после точки — ошибка.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMoney)
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: more than two decimals in %q", ErrInvalidMoney, s)
	}
	var w int64
	if whole != "" {
		n, err := strconv.ParseUint(whole, 10, 63)
		if err != nil || n > maxWhole {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidMoney, s)
		}
		w = int64(n)
	}
	var f int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		n, err := strconv.ParseUint(frac, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
		}
		f = int64(n)
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

// MarshalJSON пишет сумму строкой "12.50": без потерь и без float.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON принимает и строку "12.50", и число 12.5.
func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
